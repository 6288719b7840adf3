package rumbleup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
)

var errNotInteractable = errors.New("element not interactable")

// fakeBrowser records every call as "Op selector" and answers from its fields.
type fakeBrowser struct {
	calls []string

	// fail makes a call return the error every time; failTimes only for the
	// first n calls.
	fail      map[string]error
	failTimes map[string]int

	texts    []string
	checked  map[string]bool
	toggleOn map[string]bool
	typed    map[string]string
	uploads  map[string][]string
	nodes    map[string]*cdp.Node

	href       string
	location   string
	loginShown bool
	closed     int
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		fail:      map[string]error{},
		failTimes: map[string]int{},
		checked:   map[string]bool{},
		toggleOn:  map[string]bool{},
		typed:     map[string]string{},
		uploads:   map[string][]string{},
		nodes: map[string]*cdp.Node{
			selUploadTarget: {NodeName: "INPUT", Attributes: []string{"type", "file", "id", "Filedata"}},
		},
		location: "https://rumble.com/upload.php",
	}
}

func (f *fakeBrowser) call(op, sel string) error {
	key := op + " " + sel
	f.calls = append(f.calls, key)
	if n := f.failTimes[key]; n > 0 {
		f.failTimes[key] = n - 1
		return errNotInteractable
	}
	return f.fail[key]
}

func (f *fakeBrowser) count(key string) int {
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

func (f *fakeBrowser) click(op, sel string) error {
	if err := f.call(op, sel); err != nil {
		return err
	}
	if f.toggleOn[op+" "+sel] {
		f.checked[sel] = !f.checked[sel]
	}
	return nil
}

func (f *fakeBrowser) Navigate(ctx context.Context, url string) error {
	return f.call("Navigate", url)
}

func (f *fakeBrowser) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	return f.call("WaitVisible", sel)
}

func (f *fakeBrowser) SendKeys(ctx context.Context, sel, text string) error {
	if err := f.call("SendKeys", sel); err != nil {
		return err
	}
	f.typed[sel] += text
	return nil
}

func (f *fakeBrowser) Click(ctx context.Context, sel string) error {
	return f.click("Click", sel)
}

func (f *fakeBrowser) ScriptClick(ctx context.Context, sel string) error {
	return f.click("ScriptClick", sel)
}

func (f *fakeBrowser) ScrollIntoView(ctx context.Context, sel string) error {
	return f.call("ScrollIntoView", sel)
}

func (f *fakeBrowser) Text(ctx context.Context, sel string) (string, error) {
	if err := f.call("Text", sel); err != nil {
		return "", err
	}
	if len(f.texts) == 0 {
		return "", fmt.Errorf("no element matches %s", sel)
	}
	text := f.texts[0]
	if len(f.texts) > 1 {
		f.texts = f.texts[1:]
	}
	return text, nil
}

func (f *fakeBrowser) Attribute(ctx context.Context, sel, name string) (string, bool, error) {
	if err := f.call("Attribute", sel); err != nil {
		return "", false, err
	}
	return f.href, f.href != "", nil
}

func (f *fakeBrowser) Checked(ctx context.Context, sel string) (bool, error) {
	if err := f.call("Checked", sel); err != nil {
		return false, err
	}
	return f.checked[sel], nil
}

func (f *fakeBrowser) Node(ctx context.Context, sel string) (*cdp.Node, error) {
	if err := f.call("Node", sel); err != nil {
		return nil, err
	}
	node, ok := f.nodes[sel]
	if !ok {
		return nil, fmt.Errorf("no element matches %s", sel)
	}
	return node, nil
}

func (f *fakeBrowser) Evaluate(ctx context.Context, script string, res interface{}) error {
	if err := f.call("Evaluate", script); err != nil {
		return err
	}
	if found, ok := res.(*bool); ok {
		*found = true
		if strings.Contains(script, selLoginUsername) {
			*found = f.loginShown
		}
	}
	return nil
}

func (f *fakeBrowser) SetUploadFiles(ctx context.Context, sel string, files []string) error {
	if err := f.call("SetUploadFiles", sel); err != nil {
		return err
	}
	f.uploads[sel] = files
	return nil
}

func (f *fakeBrowser) Location(ctx context.Context) (string, error) {
	return f.location, f.call("Location", "")
}

func (f *fakeBrowser) SetCookies(ctx context.Context, host string, cookies ...*http.Cookie) error {
	return f.call("SetCookies", host)
}

func (f *fakeBrowser) Screenshot(ctx context.Context) ([]byte, error) {
	if err := f.call("Screenshot", ""); err != nil {
		return nil, err
	}
	return []byte("jpeg"), nil
}

func (f *fakeBrowser) Close() {
	f.closed++
}

var _ Browser = (*fakeBrowser)(nil)
