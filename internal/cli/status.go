package cli

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/tansive/nanobanana/internal/common/httpclient"
	"github.com/tansive/nanobanana/internal/gateway/mcpservice"
)

// StatusResponse is what status reports about a running HTTP server.
type StatusResponse struct {
	Server        string `json:"server"`
	ServerVersion string `json:"serverVersion"`
	DefaultModel  string `json:"defaultModel"`
	Status        string `json:"status"`
	Sessions      int    `json:"sessions"`
	Tools         int    `json:"tools"`
	Latency       string `json:"latency"`
}

type readinessRsp struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func newStatusCmd() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check a running nanobanana HTTP server",
		Long: `Check a running nanobanana server started with --transport http. This reports
the server version and default model, the number of open chat sessions, and
whether the MCP endpoint answers a ping.

Examples:
  # Check the server at the configured listen address
  nanobanana status

  # Check a specific server in JSON format
  nanobanana status --server http://10.0.0.5:8628 -j`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := server
			if target == "" {
				c, err := LoadConfig(configFile)
				if err != nil {
					return err
				}
				target = serverURL(c.Transport.ListenAddr)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), httpclient.DefaultTimeout)
			defer cancel()
			st, err := getStatus(ctx, target)
			if err != nil {
				return err
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), st)
				return nil
			}
			out := cmd.OutOrStdout()
			okLabel.Fprintf(out, "%s is %s\n", st.Server, st.Status)
			fmt.Fprintf(out, "  version:       %s\n", st.ServerVersion)
			fmt.Fprintf(out, "  default model: %s\n", st.DefaultModel)
			fmt.Fprintf(out, "  tools:         %d\n", st.Tools)
			fmt.Fprintf(out, "  chat sessions: %d\n", st.Sessions)
			fmt.Fprintf(out, "  ping:          %s\n", st.Latency)
			return nil
		},
	}
	cmd.Flags().StringVarP(&server, "server", "s", "", "Server URL (defaults to the configured listen address)")
	return cmd
}

// serverURL turns a listen address into a URL a local client can reach.
func serverURL(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return "http://" + listenAddr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func getStatus(ctx context.Context, server string) (*StatusResponse, error) {
	client, err := httpclient.NewClient(server)
	if err != nil {
		return nil, err
	}

	var ver mcpservice.GetVersionRsp
	if err := client.GetJSON(ctx, "/version", &ver); err != nil {
		return nil, fmt.Errorf("unable to get server version: %w", err)
	}
	var ready readinessRsp
	if err := client.GetJSON(ctx, "/ready", &ready); err != nil {
		return nil, fmt.Errorf("unable to get server readiness: %w", err)
	}

	start := time.Now()
	if _, err := client.Call(ctx, "/mcp", "ping", nil); err != nil {
		return nil, fmt.Errorf("mcp endpoint did not answer ping: %w", err)
	}
	latency := time.Since(start)

	tools, err := client.Call(ctx, "/mcp", "tools/list", nil)
	if err != nil {
		return nil, fmt.Errorf("unable to list tools: %w", err)
	}

	return &StatusResponse{
		Server:        server,
		ServerVersion: ver.ServerVersion,
		DefaultModel:  ver.DefaultModel,
		Status:        ready.Status,
		Sessions:      ready.Sessions,
		Tools:         int(gjson.GetBytes(tools, "tools.#").Int()),
		Latency:       latency.Round(time.Microsecond).String(),
	}, nil
}
