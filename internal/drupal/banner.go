package drupal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"

	"github.com/jhu-idc/idce2e/internal/constants"
)

// Banner selectors rendered by Drupal's messages template.
const (
	selMessages      = ".messages"
	selStatusBanner  = ".messages--status"
	selErrorBanner   = ".messages--error"
	selMessageList   = ".messages__list"
	selMessageItem   = ".messages__item"
	selHiddenHeading = "h2, .visually-hidden"
)

// DefaultBenignPattern matches the update advisories Drupal shows to admins
// on every page. They are unrelated to the migration and never fail it.
const DefaultBenignPattern = constants.DefaultBenignErrorPattern

// failedCountPattern extracts "N failed" from a migration summary such as
// `Processed 4 items (3 created, 0 updated, 1 failed, 0 ignored) - done with "idc_ingest_new_items"`.
var failedCountPattern = regexp.MustCompile(`\b(\d+) failed\b`)

// OutcomeKind classifies the banners on the page after a migration submit.
type OutcomeKind int

// Migration outcomes.
const (
	// OutcomePending means no terminal banner is visible yet.
	OutcomePending OutcomeKind = iota
	// OutcomeSuccess means the migration reported done with zero failures.
	OutcomeSuccess
	// OutcomePartialFailure means the migration reported done with failed rows.
	OutcomePartialFailure
	// OutcomeFatal means a non-benign error banner is visible.
	OutcomeFatal
)

// String implements fmt.Stringer.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomePending:
		return "pending"
	case OutcomeSuccess:
		return "success"
	case OutcomePartialFailure:
		return "partial_failure"
	case OutcomeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// MigrationOutcome is the classification of one page snapshot.
type MigrationOutcome struct {
	Kind OutcomeKind
	// Failed is the failed row count of a PartialFailure.
	Failed int
	// Messages are the error messages of a Fatal outcome.
	Messages []string
	// Banner is the status text the outcome was read from, when any.
	Banner string
}

// Terminal reports whether the outcome ends the wait.
func (o MigrationOutcome) Terminal() bool {
	return o.Kind != OutcomePending
}

// BenignPolicy reports whether an error message may be ignored.
type BenignPolicy func(message string) bool

// MatchAny returns a policy accepting messages that contain any of patterns,
// compared under Unicode case folding. With no patterns nothing is benign.
func MatchAny(patterns ...string) BenignPolicy {
	folded := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			folded = append(folded, cases.Fold().String(p))
		}
	}
	return func(message string) bool {
		msg := cases.Fold().String(message)
		for _, p := range folded {
			if strings.Contains(msg, p) {
				return true
			}
		}
		return false
	}
}

// DefaultBenignPolicy accepts Drupal core and module security update advisories.
func DefaultBenignPolicy() BenignPolicy {
	return MatchAny(DefaultBenignPattern)
}

// ClassifyBanner classifies the banners of a snapshot taken after submitting
// migration id.
//
// An error banner whose messages are not all accepted by policy is Fatal,
// whether or not a status banner is also present. Otherwise the status banner
// decides: no status banner, or none mentioning `done with "<id>"` with a
// failed count, is Pending; zero failed rows is Success; any other count is
// PartialFailure. A nil policy uses DefaultBenignPolicy.
func ClassifyBanner(doc *goquery.Document, id string, policy BenignPolicy) MigrationOutcome {
	if policy == nil {
		policy = DefaultBenignPolicy()
	}

	if msgs := errorMessages(doc); len(msgs) > 0 && !allBenign(msgs, policy) {
		return MigrationOutcome{Kind: OutcomeFatal, Messages: msgs}
	}

	if doc.Find(selStatusBanner).Length() == 0 {
		return MigrationOutcome{Kind: OutcomePending}
	}

	marker := fmt.Sprintf("done with %q", id)
	var outcome MigrationOutcome
	withText(doc.Find(selMessages), marker).EachWithBreak(func(_ int, banner *goquery.Selection) bool {
		for _, msg := range bannerMessages(banner) {
			if !strings.Contains(msg, marker) {
				continue
			}
			m := failedCountPattern.FindStringSubmatch(msg)
			if m == nil {
				continue
			}
			failed, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			outcome = MigrationOutcome{Kind: OutcomeSuccess, Banner: msg}
			if failed > 0 {
				outcome.Kind = OutcomePartialFailure
				outcome.Failed = failed
			}
			return false
		}
		return true
	})
	return outcome
}

// errorMessages returns the messages of every error banner in doc.
func errorMessages(doc *goquery.Document) []string {
	var msgs []string
	doc.Find(selErrorBanner).Each(func(_ int, banner *goquery.Selection) {
		msgs = append(msgs, bannerMessages(banner)...)
	})
	return msgs
}

// blockingMessages returns the error banner messages of doc, or nil when
// policy accepts every one of them.
func blockingMessages(doc *goquery.Document, policy BenignPolicy) []string {
	msgs := errorMessages(doc)
	if allBenign(msgs, policy) {
		return nil
	}
	return msgs
}

// bannerMessages splits a banner into its messages. Drupal renders several
// messages as list items and a single one as bare text under a hidden heading.
func bannerMessages(banner *goquery.Selection) []string {
	parts := banner.Find(selMessageItem)
	if parts.Length() == 0 {
		parts = banner.Find(selMessageList)
	}
	if parts.Length() == 0 {
		body := banner.Clone()
		body.Find(selHiddenHeading).Remove()
		parts = body
	}

	var msgs []string
	parts.Each(func(_ int, s *goquery.Selection) {
		if text := textOf(s); text != "" {
			msgs = append(msgs, text)
		}
	})
	return msgs
}

// allBenign reports whether policy accepts every message.
func allBenign(msgs []string, policy BenignPolicy) bool {
	for _, m := range msgs {
		if !policy(m) {
			return false
		}
	}
	return true
}
