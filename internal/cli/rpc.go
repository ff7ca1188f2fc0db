package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bondledger/bondmarketd/internal/rpc"
)

var rpcURL string

// rpcCmd represents the rpc command group
var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "RPC client commands",
	Long:  `Execute RPC commands against a running bondmarketd server.`,
}

func init() {
	rootCmd.AddCommand(rpcCmd)
	rpcCmd.PersistentFlags().StringVar(&rpcURL, "url", "http://127.0.0.1:5005", "server RPC endpoint")
}

// executeMethod sends one JSON-RPC request and pretty-prints the result.
func executeMethod(method string, params interface{}) error {
	if params == nil {
		params = map[string]interface{}{}
	}
	rawParams, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}
	body, err := json.Marshal(rpc.JsonRpcRequest{
		JsonRpc: "2.0",
		Method:  method,
		Params:  rawParams,
		ID:      1,
	})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(rpcURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *rpc.RpcError   `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("RPC error [%d]: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, rpcResp.Result, "", "  "); err != nil {
		fmt.Println(string(rpcResp.Result))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeMethod("ping", nil)
	},
}

var serverInfoCmd = &cobra.Command{
	Use:   "server_info",
	Short: "Get server information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeMethod("server_info", nil)
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <tx_json>",
	Short: "Submit a signed transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var txJSON json.RawMessage
		if err := json.Unmarshal([]byte(args[0]), &txJSON); err != nil {
			return fmt.Errorf("invalid transaction JSON: %w", err)
		}
		return executeMethod("submit", map[string]interface{}{"tx_json": txJSON})
	},
}

var marketInfoCmd = &cobra.Command{
	Use:   "market_info <issuer_name>",
	Short: "Get market state by issuer name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeMethod("market_info", map[string]interface{}{"issuer_name": args[0]})
	},
}

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "List all markets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeMethod("markets", nil)
	},
}

var marketTradesCmd = &cobra.Command{
	Use:   "market_trades <market> [limit]",
	Short: "Get recent trades for a market",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]interface{}{"market": args[0]}
		if len(args) > 1 {
			limit, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid limit: %w", err)
			}
			params["limit"] = limit
		}
		return executeMethod("market_trades", params)
	},
}

var accountInfoCmd = &cobra.Command{
	Use:   "account_info <account>",
	Short: "Get account information",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeMethod("account_info", map[string]interface{}{"account": args[0]})
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance <account> <mint>",
	Short: "Get a token balance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeMethod("balance", map[string]interface{}{
			"account": args[0],
			"mint":    args[1],
		})
	},
}

// Generic JSON command for any method
var jsonCmd = &cobra.Command{
	Use:   "json <method> <json_params>",
	Short: "Execute any RPC method with JSON parameters",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var params interface{}
		if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
			return fmt.Errorf("invalid JSON parameters: %w", err)
		}
		return executeMethod(args[0], params)
	},
}

func init() {
	rpcCmd.AddCommand(
		pingCmd,
		serverInfoCmd,
		submitCmd,
		marketInfoCmd,
		marketsCmd,
		marketTradesCmd,
		accountInfoCmd,
		balanceCmd,
		jsonCmd,
	)
}
