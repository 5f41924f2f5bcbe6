package drupal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBanner(t *testing.T) {
	t.Parallel()

	id := NewItems.ID()

	tests := []struct {
		name     string
		html     string
		policy   BenignPolicy
		kind     OutcomeKind
		failed   int
		messages []string
	}{
		{
			name: "no banner is pending",
			html: migratePage(),
			kind: OutcomePending,
		},
		{
			name: "status without done marker is pending",
			html: migratePage(statusBanner("Import started.")),
			kind: OutcomePending,
		},
		{
			name: "done with zero failed is success",
			html: migratePage(statusBanner(doneMessage(id, 4, 0))),
			kind: OutcomeSuccess,
		},
		{
			name:   "done with failed rows is partial failure",
			html:   migratePage(statusBanner(doneMessage(id, 1, 3))),
			kind:   OutcomePartialFailure,
			failed: 3,
		},
		{
			name:   "ten failed is not zero failed",
			html:   migratePage(statusBanner(doneMessage(id, 0, 10))),
			kind:   OutcomePartialFailure,
			failed: 10,
		},
		{
			name: "done banner for another migration is pending",
			html: migratePage(statusBanner(doneMessage(NewCollection.ID(), 2, 0))),
			kind: OutcomePending,
		},
		{
			name: "malformed rows are fatal",
			html: migratePage(
				statusBanner(doneMessage(id, 0, 3)),
				errorBanner("Row 2: invalid date", "Row 3: unknown term", "Row 4: missing title"),
			),
			kind:     OutcomeFatal,
			messages: []string{"Row 2: invalid date", "Row 3: unknown term", "Row 4: missing title"},
		},
		{
			name:     "error banner without status is fatal",
			html:     migratePage(errorBanner("The file could not be uploaded.")),
			kind:     OutcomeFatal,
			messages: []string{"The file could not be uploaded."},
		},
		{
			name: "security advisory alongside success is ignored",
			html: migratePage(errorBanner(securityAdvisory), statusBanner(doneMessage(id, 4, 0))),
			kind: OutcomeSuccess,
		},
		{
			name: "core and module advisories are both benign",
			html: migratePage(errorBanner(securityAdvisory, moduleAdvisory), statusBanner(doneMessage(id, 4, 0))),
			kind: OutcomeSuccess,
		},
		{
			name: "advisory alone is pending",
			html: migratePage(errorBanner(securityAdvisory)),
			kind: OutcomePending,
		},
		{
			name:     "advisory does not mask a real error",
			html:     migratePage(errorBanner(securityAdvisory, "Row 7: invalid access term"), statusBanner(doneMessage(id, 4, 0))),
			kind:     OutcomeFatal,
			messages: []string{
				"There is a security update available for your version of Drupal. See the available updates page for more information.",
				"Row 7: invalid access term",
			},
		},
		{
			name:   "custom policy",
			html:   migratePage(errorBanner("Cron has not run recently."), statusBanner(doneMessage(id, 4, 0))),
			policy: MatchAny("cron has not run"),
			kind:   OutcomeSuccess,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ClassifyBanner(parse(t, tc.html), id, tc.policy)
			assert.Equal(t, tc.kind, got.Kind, got.Kind.String())
			assert.Equal(t, tc.failed, got.Failed)
			if tc.messages != nil {
				assert.Equal(t, tc.messages, got.Messages)
			}
			assert.Equal(t, tc.kind != OutcomePending, got.Terminal())
		})
	}
}

func TestClassifyBanner_SuccessKeepsBannerText(t *testing.T) {
	t.Parallel()

	got := ClassifyBanner(parse(t, migratePage(statusBanner(doneMessage(MediaImage.ID(), 2, 0)))), MediaImage.ID(), nil)
	assert.Equal(t, OutcomeSuccess, got.Kind)
	assert.Equal(t, `Processed 2 items (2 created, 0 updated, 0 failed, 0 ignored) - done with "idc_ingest_media_image"`, got.Banner)
}

func TestMatchAny(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		patterns []string
		message  string
		want     bool
	}{
		{"case folded", []string{"security update"}, "There is a SECURITY UPDATE available", true},
		{"plural matches", []string{"security update"}, "There are security updates available", true},
		{"any pattern", []string{"nope", "cron"}, "Cron has not run", true},
		{"no match", []string{"security update"}, "Row 2: invalid", false},
		{"no patterns accept nothing", nil, "There is a security update", false},
		{"blank patterns ignored", []string{"  "}, "anything", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MatchAny(tc.patterns...)(tc.message))
		})
	}
}

func TestOutcomeKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pending", OutcomePending.String())
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "partial_failure", OutcomePartialFailure.String())
	assert.Equal(t, "fatal", OutcomeFatal.String())
	assert.Equal(t, "OutcomeKind(9)", OutcomeKind(9).String())
}
