package daemon

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/spf13/cobra"

	fdcmd "github.com/babylonlabs-io/oracle-feeder/feeder/cmd"
	"github.com/babylonlabs-io/oracle-feeder/feeder/config"
	"github.com/babylonlabs-io/oracle-feeder/feeder/store"
	"github.com/babylonlabs-io/oracle-feeder/types"
	"github.com/babylonlabs-io/oracle-feeder/util"
)

const defaultHistoryLimit = 10

// CommandHistory returns the history command that lists recorded submissions.
func CommandHistory(binaryName string) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "history",
		Short: "List the prevotes and votes recorded by the feeder.",
		Long: `Lists the most recent submissions accepted by the chain, latest first. The database is
locked while the daemon runs, stop it before reading the history.`,
		Example: fmt.Sprintf(`%s history --denom krw --limit 5 --home /home/user/.feederd`, binaryName),
		Args:    cobra.NoArgs,
		RunE:    fdcmd.RunEWithClientCtx(runHistoryCmd),
	}
	cmd.Flags().String(denomFlag, "", "Only list the given currency, e.g. krw or ukrw")
	cmd.Flags().Uint32(limitFlag, defaultHistoryLimit, "The maximum number of submissions per denom")

	return cmd
}

func runHistoryCmd(ctx client.Context, cmd *cobra.Command, _ []string) error {
	homePath, err := filepath.Abs(ctx.HomeDir)
	if err != nil {
		return err
	}
	cfg, err := config.ReadConfig(util.CleanAndExpandPath(homePath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	denom, err := cmd.Flags().GetString(denomFlag)
	if err != nil {
		return fmt.Errorf("failed to read flag %s: %w", denomFlag, err)
	}
	limit, err := cmd.Flags().GetUint32(limitFlag)
	if err != nil {
		return fmt.Errorf("failed to read flag %s: %w", limitFlag, err)
	}

	db, err := cfg.DatabaseConfig.GetDBBackend()
	if err != nil {
		return fmt.Errorf("failed to open the database: %w", err)
	}
	defer db.Close()

	hs, err := store.NewHistoryStore(db)
	if err != nil {
		return err
	}

	var denoms []string
	if denom != "" {
		denoms = []string{normalizeDenom(denom)}
	} else if denoms, err = hs.ListDenoms(); err != nil {
		return err
	}

	res := make(map[string][]*store.StoredSubmission, len(denoms))
	for _, d := range denoms {
		subs, err := hs.ListSubmissions(d, limit)
		if err != nil {
			return err
		}
		res[d] = subs
	}
	printRespJSON(cmd, res)

	return nil
}

// normalizeDenom accepts both "krw" and "ukrw".
func normalizeDenom(denom string) string {
	currency := types.NormalizeCurrency(denom)
	if len(currency) == 4 && currency[0] == 'u' {
		return currency
	}

	return types.OracleDenom(currency)
}

func printRespJSON(cmd *cobra.Command, resp interface{}) {
	jsonBytes, err := json.MarshalIndent(resp, "", "    ")
	if err != nil {
		cmd.PrintErrln("unable to decode response: ", err)
		return
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonBytes)
}
