package page

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// BrowserSpec describes one browser a workflow wants under an alias.
type BrowserSpec struct {
	Alias       string
	BrowserType string
	StartingURL string
	Headless    bool
}

// DefaultNavigateTimeout bounds the navigation to a browser's starting URL.
const DefaultNavigateTimeout = 30 * time.Second

type session struct {
	browser playwright.Browser
	handle  Handle
	leased  bool
}

// Manager owns the playwright driver and every browser launched for a run,
// keyed by alias.
type Manager struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	sessions    map[string]*session
	initialized bool
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*session)}
}

// Initialize installs (if needed) and starts the playwright driver. It must
// be called before Launch.
func (m *Manager) Initialize(verbose bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	opts := &playwright.RunOptions{Verbose: verbose}
	if !verbose {
		opts.Stdout = io.Discard
		opts.Stderr = io.Discard
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("installing playwright: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("starting playwright: %w", err)
	}

	m.pw = pw
	m.initialized = true
	return nil
}

// Launch starts the browser described by spec, opens a page and navigates it
// to the starting URL. It is safe to call concurrently for different aliases.
func (m *Manager) Launch(ctx context.Context, spec BrowserSpec) (Handle, error) {
	m.mu.Lock()
	if !m.initialized {
		m.mu.Unlock()
		return nil, fmt.Errorf("browser manager not initialized")
	}
	if _, exists := m.sessions[spec.Alias]; exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("browser %q already launched", spec.Alias)
	}
	pw := m.pw
	m.mu.Unlock()

	browserType, launchOpts, err := resolveBrowserType(pw, spec)
	if err != nil {
		return nil, err
	}

	browser, err := browserType.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("launching %s for %q: %w", spec.BrowserType, spec.Alias, err)
	}

	p, err := browser.NewPage()
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("opening page for %q: %w", spec.Alias, err)
	}

	h := Wrap(p)
	if spec.StartingURL != "" {
		if err := h.Navigate(ctx, spec.StartingURL, DefaultNavigateTimeout); err != nil {
			_ = browser.Close()
			return nil, fmt.Errorf("opening starting url for %q: %w", spec.Alias, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[spec.Alias]; exists {
		_ = browser.Close()
		return nil, fmt.Errorf("browser %q already launched", spec.Alias)
	}
	m.sessions[spec.Alias] = &session{browser: browser, handle: h}
	return h, nil
}

// SupportedBrowserType reports whether Launch understands browserType. The
// empty string selects chromium.
func SupportedBrowserType(browserType string) bool {
	switch strings.ToLower(browserType) {
	case "", "chromium", "chrome", "edge", "msedge", "firefox", "webkit", "safari":
		return true
	default:
		return false
	}
}

func resolveBrowserType(pw *playwright.Playwright, spec BrowserSpec) (playwright.BrowserType, playwright.BrowserTypeLaunchOptions, error) {
	opts := playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(spec.Headless)}

	switch strings.ToLower(spec.BrowserType) {
	case "", "chromium":
		return pw.Chromium, opts, nil
	case "chrome":
		opts.Channel = playwright.String("chrome")
		return pw.Chromium, opts, nil
	case "edge", "msedge":
		opts.Channel = playwright.String("msedge")
		return pw.Chromium, opts, nil
	case "firefox":
		return pw.Firefox, opts, nil
	case "webkit", "safari":
		return pw.WebKit, opts, nil
	default:
		return nil, opts, fmt.Errorf("unsupported browser_type %q for %q", spec.BrowserType, spec.Alias)
	}
}

// Register attaches an existing Handle under alias. It lets callers drive
// pages the manager did not launch itself.
func (m *Manager) Register(alias string, h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[alias]; exists {
		return fmt.Errorf("browser %q already launched", alias)
	}
	m.sessions[alias] = &session{handle: h}
	return nil
}

// Get returns the page under alias without claiming it.
func (m *Manager) Get(alias string) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlias, alias)
	}
	return s.handle, nil
}

// Lease claims exclusive use of the page under alias. The returned release
// function gives it back and is safe to call more than once. A second Lease
// before release fails with ErrBusy.
func (m *Manager) Lease(alias string) (Handle, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[alias]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownAlias, alias)
	}
	if s.leased {
		return nil, nil, fmt.Errorf("leasing %q: %w", alias, ErrBusy)
	}
	s.leased = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			s.leased = false
			m.mu.Unlock()
		})
	}
	return s.handle, release, nil
}

// Aliases returns the registered aliases in sorted order.
func (m *Manager) Aliases() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	aliases := make([]string, 0, len(m.sessions))
	for alias := range m.sessions {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// Shutdown closes every launched browser and stops the driver. It returns
// the first error encountered but always attempts every close.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for alias, s := range m.sessions {
		if s.browser != nil {
			if err := s.browser.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("closing browser %q: %w", alias, err)
			}
		}
		delete(m.sessions, alias)
	}
	if m.pw != nil {
		if err := m.pw.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stopping playwright: %w", err)
		}
		m.pw = nil
	}
	m.initialized = false
	return firstErr
}
