// Command alarmctl is a small operator CLI for the Manager's admin API: it
// seeds alarm rule templates from a YAML file, lists the templates currently
// registered, and tails recently recorded alarm events.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/joeypjx/fleet-manager/internal/auth"
	"github.com/joeypjx/fleet-manager/internal/config"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

var (
	managerURL  string
	authSecret  string
	tokenTTL    = 5 * time.Minute
	httpTimeout = 10 * time.Second
)

func main() {
	root := &cobra.Command{
		Use:   "alarmctl",
		Short: "Operate a fleet-manager alarm engine from the command line",
	}
	root.PersistentFlags().StringVar(&managerURL, "url", "http://localhost:8080", "manager base URL")
	root.PersistentFlags().StringVar(&authSecret, "secret", os.Getenv("AUTH_SECRET"), "manager auth secret, used to mint a local admin token")

	root.AddCommand(seedCmd(), rulesCmd(), eventsCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func client() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

func authedRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, managerURL+path, body)
	if err != nil {
		return nil, err
	}
	token, err := auth.IssueToken([]byte(authSecret), "alarmctl", tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("mint admin token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upload every template in a YAML seed file to the manager",
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := config.LoadSeedTemplates(file)
			if err != nil {
				return fmt.Errorf("load seed file: %w", err)
			}
			if len(templates) == 0 {
				log.Warn().Str("file", file).Msg("no templates found in seed file")
				return nil
			}

			hc := client()
			for _, t := range templates {
				raw, err := json.Marshal(t)
				if err != nil {
					return fmt.Errorf("marshal template %s: %w", t.TemplateID, err)
				}
				req, err := authedRequest(http.MethodPost, "/alarm/rules", bytes.NewReader(raw))
				if err != nil {
					return err
				}
				resp, err := hc.Do(req)
				if err != nil {
					return fmt.Errorf("post template %s: %w", t.TemplateID, err)
				}
				resp.Body.Close()
				if resp.StatusCode >= 300 {
					log.Error().Str("templateId", t.TemplateID).Int("status", resp.StatusCode).Msg("seed failed")
					continue
				}
				log.Info().Str("templateId", t.TemplateID).Msg("seeded")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to a YAML seed-template file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func rulesCmd() *cobra.Command {
	parent := &cobra.Command{Use: "rules", Short: "Manage alarm rule templates"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every registered alarm rule template",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := authedRequest(http.MethodGet, "/alarm/rules", nil)
			if err != nil {
				return err
			}
			resp, err := client().Do(req)
			if err != nil {
				return fmt.Errorf("list templates: %w", err)
			}
			defer resp.Body.Close()

			var envelope struct {
				Data []json.RawMessage `json:"data"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			for _, raw := range envelope.Data {
				fmt.Println(string(raw))
			}
			return nil
		},
	}

	parent.AddCommand(list)
	return parent
}

func eventsCmd() *cobra.Command {
	parent := &cobra.Command{Use: "events", Short: "Inspect alarm events"}

	var interval time.Duration
	var limit int
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Poll and print newly recorded alarm events",
		RunE: func(cmd *cobra.Command, args []string) error {
			seen := make(map[int64]bool)
			for {
				if err := printNewEvents(seen, limit); err != nil {
					log.Error().Err(err).Msg("poll failed")
				}
				time.Sleep(interval)
			}
		},
	}
	tail.Flags().DurationVar(&interval, "interval", 3*time.Second, "poll interval")
	tail.Flags().IntVar(&limit, "limit", 20, "how many recent events to request per poll")

	parent.AddCommand(tail)
	return parent
}

func printNewEvents(seen map[int64]bool, limit int) error {
	req, err := authedRequest(http.MethodGet, fmt.Sprintf("/alarm/events?limit=%d", limit), nil)
	if err != nil {
		return err
	}
	resp, err := client().Do(req)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Data []struct {
			ID         int64  `json:"id"`
			Timestamp  string `json:"timestamp"`
			RuleID     string `json:"ruleId"`
			NodeID     string `json:"nodeId"`
			EventType  string `json:"eventType"`
			AlarmLevel string `json:"alarmLevel"`
			Details    string `json:"details"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	for i := len(envelope.Data) - 1; i >= 0; i-- {
		e := envelope.Data[i]
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		log.Info().
			Str("ts", e.Timestamp).
			Str("rule", e.RuleID).
			Str("node", e.NodeID).
			Str("type", e.EventType).
			Str("level", e.AlarmLevel).
			Msg(e.Details)
	}
	return nil
}
