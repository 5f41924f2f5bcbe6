package testutil

import (
	"context"
	"sync"

	"github.com/jhu-idc/idce2e/internal/browser"
)

// emptyDocument is served for URLs without a scripted snapshot.
const emptyDocument = "<html><head></head><body></body></html>"

// Action kinds recorded by FakePage.
const (
	ActionNavigate = "navigate"
	ActionReload   = "reload"
	ActionClick    = "click"
	ActionSetValue = "set_value"
	ActionSendKeys = "send_keys"
	ActionUpload   = "upload"
)

// Action is one recorded page interaction.
type Action struct {
	Kind     string
	Selector string
	Value    string
	Files    []string
}

// FakePage is a scripted browser.Page.
//
// Each URL maps to a sequence of HTML snapshots. Every HTML call at a URL
// returns the next snapshot in its sequence and then keeps returning the last
// one, which lets tests script a page that changes while it is polled.
type FakePage struct {
	mu       sync.Mutex
	pages    map[string][]string
	reads    map[string]int
	current  string
	actions  []Action
	onClick  map[string]string
	errs     map[string]error
	onHTML   func(url string, read int)
	shotData []byte
}

// NewFakePage returns an empty FakePage positioned at about:blank.
func NewFakePage() *FakePage {
	return &FakePage{
		pages:    map[string][]string{},
		reads:    map[string]int{},
		current:  "about:blank",
		onClick:  map[string]string{},
		errs:     map[string]error{},
		shotData: []byte("\x89PNG\r\n\x1a\nfake"),
	}
}

// Serve scripts the snapshots returned for url.
func (f *FakePage) Serve(url string, snapshots ...string) *FakePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[url] = append([]string(nil), snapshots...)
	f.reads[url] = 0
	return f
}

// ClickNavigates makes a click on selector move the page to url,
// the way a submit button or a link does.
func (f *FakePage) ClickNavigates(selector, url string) *FakePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onClick[selector] = url
	return f
}

// FailOn makes every action of kind fail with err.
func (f *FakePage) FailOn(kind string, err error) *FakePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[kind] = err
	return f
}

// OnHTML registers a hook called before each snapshot is served, with the
// zero-based read count for the current URL. Tests use it to advance clocks.
func (f *FakePage) OnHTML(hook func(url string, read int)) *FakePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onHTML = hook
	return f
}

// Actions returns a copy of the recorded interactions.
func (f *FakePage) Actions() []Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Action(nil), f.actions...)
}

// Count returns how many actions of kind were recorded.
func (f *FakePage) Count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// Reads returns how many snapshots were served for url.
func (f *FakePage) Reads(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[url]
}

// record stores a and returns the configured failure for its kind.
// Callers must hold f.mu.
func (f *FakePage) record(ctx context.Context, a Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.actions = append(f.actions, a)
	return f.errs[a.Kind]
}

// Navigate implements browser.Page.
func (f *FakePage) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, Action{Kind: ActionNavigate, Value: url}); err != nil {
		return err
	}
	f.current = url
	return nil
}

// Reload implements browser.Page.
func (f *FakePage) Reload(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record(ctx, Action{Kind: ActionReload, Value: f.current})
}

// Location implements browser.Page.
func (f *FakePage) Location(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

// HTML implements browser.Page.
func (f *FakePage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	url := f.current
	read := f.reads[url]
	hook := f.onHTML
	f.mu.Unlock()

	if hook != nil {
		hook(url, read)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads[url] = read + 1
	snaps := f.pages[url]
	if len(snaps) == 0 {
		return emptyDocument, nil
	}
	if read >= len(snaps) {
		read = len(snaps) - 1
	}
	return snaps[read], nil
}

// Click implements browser.Page.
func (f *FakePage) Click(ctx context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, Action{Kind: ActionClick, Selector: selector}); err != nil {
		return err
	}
	if next, ok := f.onClick[selector]; ok {
		f.current = next
	}
	return nil
}

// SetValue implements browser.Page.
func (f *FakePage) SetValue(ctx context.Context, selector, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record(ctx, Action{Kind: ActionSetValue, Selector: selector, Value: value})
}

// SendKeys implements browser.Page.
func (f *FakePage) SendKeys(ctx context.Context, selector, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record(ctx, Action{Kind: ActionSendKeys, Selector: selector, Value: text})
}

// SetUploadFiles implements browser.Page.
func (f *FakePage) SetUploadFiles(ctx context.Context, selector string, files []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record(ctx, Action{Kind: ActionUpload, Selector: selector, Files: append([]string(nil), files...)})
}

// Screenshot implements browser.Page.
func (f *FakePage) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.shotData...), nil
}

var _ browser.Page = (*FakePage)(nil)
