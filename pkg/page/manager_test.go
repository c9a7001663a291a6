package page_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/arnavsurve/rowpilot/pkg/page"
	"github.com/arnavsurve/rowpilot/pkg/page/pagetest"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLease(t *testing.T) {
	m := page.NewManager()
	fake := pagetest.New()
	require.NoError(t, m.Register("main", fake))

	h, release, err := m.Lease("main")
	require.NoError(t, err)
	assert.Same(t, fake, h)

	_, _, err = m.Lease("main")
	assert.ErrorIs(t, err, page.ErrBusy)

	release()
	release()

	_, release2, err := m.Lease("main")
	require.NoError(t, err)
	release2()
}

func TestManagerUnknownAlias(t *testing.T) {
	m := page.NewManager()

	_, err := m.Get("secondary")
	require.Error(t, err)
	assert.ErrorIs(t, err, page.ErrUnknownAlias)
	assert.Contains(t, err.Error(), "secondary")

	_, _, err = m.Lease("secondary")
	assert.ErrorIs(t, err, page.ErrUnknownAlias)
}

func TestManagerRegisterDuplicate(t *testing.T) {
	m := page.NewManager()
	require.NoError(t, m.Register("main", pagetest.New()))
	require.NoError(t, m.Register("admin", pagetest.New()))
	assert.Error(t, m.Register("main", pagetest.New()))
	assert.Equal(t, []string{"admin", "main"}, m.Aliases())

	require.NoError(t, m.Shutdown())
	assert.Empty(t, m.Aliases())
}

func TestManagerLaunchRequiresInitialize(t *testing.T) {
	m := page.NewManager()
	_, err := m.Launch(t.Context(), page.BrowserSpec{Alias: "main"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestTranslateKeepsPlaywrightError(t *testing.T) {
	err := page.TranslateForTest("click", fmt.Errorf("locator.click: %w", playwright.ErrTimeout))
	assert.ErrorIs(t, err, page.ErrTimeout)
	assert.ErrorIs(t, err, playwright.ErrTimeout)

	err = page.TranslateForTest("fill", playwright.ErrTargetClosed)
	assert.ErrorIs(t, err, page.ErrClosed)

	other := errors.New("boom")
	err = page.TranslateForTest("evaluate", other)
	assert.ErrorIs(t, err, other)
	assert.False(t, errors.Is(err, page.ErrTimeout))

	assert.NoError(t, page.TranslateForTest("count", nil))
}

func TestSupportedBrowserType(t *testing.T) {
	for _, bt := range []string{"", "chromium", "Chrome", "msedge", "firefox", "webkit", "safari"} {
		assert.True(t, page.SupportedBrowserType(bt), bt)
	}
	assert.False(t, page.SupportedBrowserType("netscape"))
}
