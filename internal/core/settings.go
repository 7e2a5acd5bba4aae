package core

// Settings are the user-level knobs kept in durable storage next to the
// entries: the monthly budget ceiling, the presentation preference and the
// webhook URL entries are dispatched to. Last write wins.
type Settings struct {
	MonthlyBudget int64  `json:"monthlyBudget"`
	DarkMode      bool   `json:"darkMode"`
	WebhookURL    string `json:"webhookUrl"`
}
