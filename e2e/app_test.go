//go:build e2e

package e2e

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type E2ETestSuite struct {
	suite.Suite
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	expect  playwright.PlaywrightAssertions
}

func (s *E2ETestSuite) SetupSuite() {
	pw, err := playwright.Run()
	require.NoError(s.T(), err, "could not launch playwright")
	s.pw = pw

	browser, err := pw.Chromium.Launch()
	require.NoError(s.T(), err, "could not launch chromium")
	s.browser = browser

	s.expect = playwright.NewPlaywrightAssertions()
}

func (s *E2ETestSuite) TearDownSuite() {
	if s.browser != nil {
		s.browser.Close()
	}
	if s.pw != nil {
		s.pw.Stop()
	}
}

func (s *E2ETestSuite) SetupTest() {
	page, err := s.browser.NewPage()
	require.NoError(s.T(), err, "could not create page")
	s.page = page

	// Logout asks for confirmation.
	s.page.OnDialog(func(d playwright.Dialog) {
		_ = d.Accept()
	})

	_, err = s.page.Goto(appURL)
	require.NoError(s.T(), err, "could not navigate to app")
}

func (s *E2ETestSuite) TearDownTest() {
	if s.page != nil {
		s.page.Close()
	}
}

// login submits the email form unless a session is already active.
func (s *E2ETestSuite) login(email string) {
	visible, err := s.page.Locator("#email").IsVisible()
	require.NoError(s.T(), err)
	if visible {
		require.NoError(s.T(), s.page.Locator("#email").Fill(email))
		require.NoError(s.T(), s.page.Locator("form[action='/login'] button[type=submit]").Click())
	}

	err = s.expect.Locator(s.page.Locator("h1")).ToHaveText("Dashboard")
	require.NoError(s.T(), err, "dashboard not shown after login")
}

func (s *E2ETestSuite) TestLoginShowsEmptyDashboard() {
	s.login("e2e@example.com")

	err := s.expect.Locator(s.page.Locator(".topbar .email")).ToHaveText("e2e@example.com")
	require.NoError(s.T(), err, "user email missing from header")

	err = s.expect.Locator(s.page.Locator("[data-testid=active-subscriptions]")).ToBeVisible()
	require.NoError(s.T(), err, "stats cards missing")
}

func (s *E2ETestSuite) TestAddExpense() {
	s.login("e2e@example.com")

	_, err := s.page.Goto(appURL + "/expenses")
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.page.Locator("#expense-form summary").Click())
	require.NoError(s.T(), s.page.Locator("#expense-title").Fill("Market alışverişi"))
	require.NoError(s.T(), s.page.Locator("#expense-amount").Fill("125.50"))
	_, err = s.page.Locator("#expense-category").SelectOption(playwright.SelectOptionValues{
		Values: &[]string{"Yiyecek"},
	})
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.page.Locator("#expense-form button[type=submit]").Click())

	row := s.page.Locator("#expense-list .row-title", playwright.PageLocatorOptions{HasText: "Market alışverişi"})
	err = s.expect.Locator(row).ToBeVisible()
	require.NoError(s.T(), err, "new expense not listed")

	err = s.expect.Locator(s.page.Locator("#expense-list")).ToContainText("125,50")
	require.NoError(s.T(), err, "amount not formatted")
}

func (s *E2ETestSuite) TestExpenseValidation() {
	s.login("e2e@example.com")

	_, err := s.page.Goto(appURL + "/expenses")
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.page.Locator("#expense-form summary").Click())
	require.NoError(s.T(), s.page.Locator("#expense-amount").Fill("-5"))
	require.NoError(s.T(), s.page.Locator("#expense-form button[type=submit]").Click())

	err = s.expect.Locator(s.page.Locator("#expense-form .field-error").First()).ToBeVisible()
	require.NoError(s.T(), err, "field errors not shown")
}

func (s *E2ETestSuite) TestAddSubscription() {
	s.login("e2e@example.com")

	_, err := s.page.Goto(appURL + "/subscriptions")
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.page.Locator("#subscription-form summary").Click())
	require.NoError(s.T(), s.page.Locator("#subscription-title").Fill("Netflix"))
	require.NoError(s.T(), s.page.Locator("#subscription-amount").Fill("99.99"))
	require.NoError(s.T(), s.page.Locator("#subscription-next").Fill("2030-01-01"))
	require.NoError(s.T(), s.page.Locator("#subscription-form button[type=submit]").Click())

	row := s.page.Locator(".row-title", playwright.PageLocatorOptions{HasText: "Netflix"})
	err = s.expect.Locator(row.First()).ToBeVisible()
	require.NoError(s.T(), err, "new subscription not listed")
}

func (s *E2ETestSuite) TestLogoutReturnsToLogin() {
	s.login("e2e@example.com")

	require.NoError(s.T(), s.page.Locator("form[action='/logout'] button").Click())

	err := s.expect.Locator(s.page.Locator("#email")).ToBeVisible()
	require.NoError(s.T(), err, "login form not shown after logout")
}

func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
