package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	userID  string
	token   string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fxwallet-cli",
		Short: "FX Wallet CLI tool",
		Long:  `A command line interface for interacting with the FX Wallet API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the FX Wallet API")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User ID sent as X-User-ID (development identity)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated deployments")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		walletCmd(),
		fundCmd(),
		convertCmd(),
		tradeCmd(),
		historyCmd(),
		statsCmd(),
		ratesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func walletCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wallet",
		Short: "Show wallet balances with USD valuation",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/wallet", nil)
		},
	}
}

func fundCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "fund <currency> <amount>",
		Short: "Credit an amount to the wallet",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/wallet/fund", map[string]string{
				"currency":    args[0],
				"amount":      args[1],
				"description": description,
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Journal entry description")
	return cmd
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <from> <to> <amount>",
		Short: "Convert between currencies at the market rate",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/wallet/convert", map[string]string{
				"from_currency": args[0],
				"to_currency":   args[1],
				"amount":        args[2],
			})
		},
	}
}

func tradeCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "trade <from> <to> <amount>",
		Short: "Trade between currencies at the market rate",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/wallet/trade", map[string]string{
				"from_currency": args[0],
				"to_currency":   args[1],
				"amount":        args[2],
				"description":   description,
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Journal entry description")
	return cmd
}

func historyCmd() *cobra.Command {
	var (
		page     int
		limit    int
		txnType  string
		currency string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journal entries, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			params := []string{fmt.Sprintf("page=%d", page), fmt.Sprintf("limit=%d", limit)}
			if txnType != "" {
				params = append(params, "type="+txnType)
			}
			if currency != "" {
				params = append(params, "currency="+currency)
			}
			doRequest(http.MethodGet, "/api/v1/transactions?"+strings.Join(params, "&"), nil)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	cmd.Flags().StringVar(&txnType, "type", "", "Filter by entry type (FUNDING, CONVERSION, TRADE)")
	cmd.Flags().StringVar(&currency, "currency", "", "Filter by currency on either leg")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Per-type counts and totals over completed entries",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/transactions/stats", nil)
		},
	}
}

func ratesCmd() *cobra.Command {
	var (
		base    string
		targets string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "rates [base] [target]",
		Short: "Show exchange rates",
		Long:  "With no arguments lists rates for the base against all targets; with a pair shows the pair and its inverse.",
		Args:  cobra.MaximumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 2 {
				doRequest(http.MethodGet, fmt.Sprintf("/api/v1/fx/rates/%s/%s", args[0], args[1]), nil)
				return
			}
			path := "/api/v1/fx/rates?base=" + base
			if targets != "" {
				path += "&targets=" + targets
			}
			doRequest(http.MethodGet, path, nil)
		},
	}

	historicalCmd := &cobra.Command{
		Use:   "historical <base> <target>",
		Short: "Show recent rate samples for a pair, newest first",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, fmt.Sprintf("/api/v1/fx/rates/historical/%s/%s?limit=%d", args[0], args[1], limit), nil)
		},
	}
	historicalCmd.Flags().IntVar(&limit, "limit", 100, "Number of samples")
	cmd.AddCommand(historicalCmd)

	cmd.Flags().StringVar(&base, "base", "USD", "Base currency")
	cmd.Flags().StringVar(&targets, "targets", "", "Comma-separated target currencies")
	return cmd
}

func doRequest(method, path string, payload map[string]string) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, truncate(string(respBody), 500))
		os.Exit(1)
	}

	var result any
	if err := json.Unmarshal(respBody, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	printJSON(result)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
