package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"cheatbot/internal/infra/config"
)

// CheckStatus represents the result of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // optional fix suggestion
}

// Check is a named health check function.
type Check struct {
	Name string
	Fn   func(cfg *config.Config) CheckResult
}

// runDoctor executes all health checks and reports results.
func runDoctor() error {
	cfgPath := configPath()
	cfg, cfgErr := config.Load(cfgPath)

	checks := []Check{
		{Name: "Config file", Fn: checkConfigFile(cfgPath, cfgErr)},
		{Name: "Chat surfaces", Fn: checkSurfaces},
		{Name: "Command gating", Fn: checkGating},
		{Name: "cheat.sh", Fn: checkCheatSh(http.DefaultClient)},
	}

	fmt.Println("cheatbot doctor")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()

	pass, warn, fail := 0, 0, 0
	for _, check := range checks {
		result := check.Fn(cfg)
		result.Name = check.Name

		fmt.Printf("  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Printf("      Fix: %s\n", result.Fix)
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Println()
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		return fmt.Errorf("%d check(s) failed", fail)
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}

var notLoaded = CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}

// checkConfigFile reports on the config file. A missing file is fine: the
// bot runs on defaults plus CHEATBOT_* variables.
func checkConfigFile(cfgPath string, cfgErr error) func(*config.Config) CheckResult {
	return func(_ *config.Config) CheckResult {
		if cfgErr != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("config error: %v", cfgErr),
				Fix:     "Check config.yaml syntax, permissions and CHEATBOT_CONFIG_KEY",
			}
		}
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("no config file at %s, using defaults and environment", cfgPath),
			}
		}
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("config loaded from %s", cfgPath),
		}
	}
}

func checkSurfaces(cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}
	if err := config.ValidateSurfaces(cfg); err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: err.Error(),
			Fix:     "Enable a surface and set its token, e.g. CHEATBOT_DISCORD_TOKEN",
		}
	}

	var enabled []string
	if cfg.Discord.Enabled {
		enabled = append(enabled, "discord")
	}
	if cfg.Slack.Enabled {
		enabled = append(enabled, "slack")
	}
	return CheckResult{
		Status:  StatusPass,
		Message: "enabled: " + strings.Join(enabled, ", "),
	}
}

// checkGating warns when the command can be used anywhere by anyone.
func checkGating(cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}
	c := cfg.Command
	if len(c.AllowedRoles) == 0 && len(c.AllowedCategories) == 0 && len(c.WhitelistedChannels) == 0 {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s%s is open in every channel", cfg.Bot.Prefix, c.Name),
			Fix:     "Set command.allowed_categories or command.whitelisted_channels",
		}
	}
	return CheckResult{
		Status: StatusPass,
		Message: fmt.Sprintf("%d role(s), %d category(ies), %d channel(s); cooldown %s",
			len(c.AllowedRoles), len(c.AllowedCategories), len(c.WhitelistedChannels), c.Cooldown),
	}
}

// checkCheatSh tests whether the cheat.sh instance answers.
func checkCheatSh(client *http.Client) func(*config.Config) CheckResult {
	return func(cfg *config.Config) CheckResult {
		if cfg == nil {
			return notLoaded
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.CheatSh.Timeout)
		defer cancel()

		endpoint := strings.TrimRight(cfg.CheatSh.BaseURL, "/") + "/:help"
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return CheckResult{Status: StatusFail, Message: fmt.Sprintf("failed to create request: %v", err)}
		}

		start := time.Now()
		resp, err := client.Do(req)
		latency := time.Since(start)
		if err != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("cannot reach %s: %v", cfg.CheatSh.BaseURL, err),
				Fix:     "Check your internet connection and cheatsh.base_url",
			}
		}
		resp.Body.Close()

		if resp.StatusCode >= 500 {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("%s answered HTTP %d", cfg.CheatSh.BaseURL, resp.StatusCode),
			}
		}
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("%s reachable (latency: %dms)", cfg.CheatSh.BaseURL, latency.Milliseconds()),
		}
	}
}
