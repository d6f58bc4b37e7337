package main

import (
	"fmt"
	"os"
	"time"

	"github.com/degen-labs/degentoken/common"
	"github.com/urfave/cli"
)

const (
	configFlagName   = "config"
	networkFlagName  = "network"
	contractFlagName = "contract"
	debugFlagName    = "debug"
	timeoutFlagName  = "timeout"

	artifactsFlagName = "artifacts"
	ownerFlagName     = "owner"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "degen"
	app.Usage = "DegenToken ledger management tool"
	app.Version = fmt.Sprintf("%d.%d.%d", common.Version/1_000_000, common.Version/1_000%1_000, common.Version%1_000)
	app.ErrWriter = os.Stderr
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   configFlagName + ", c",
			Usage:  "Path to YAML configuration file, built-in networks are used if not set",
			EnvVar: "DEGEN_CONFIG",
		},
		cli.StringFlag{
			Name:   networkFlagName + ", n",
			Usage:  "Network profile name, default one from the configuration if not set",
			EnvVar: "DEGEN_NETWORK",
		},
		cli.StringFlag{
			Name:   contractFlagName,
			Usage:  "DegenToken contract address overriding the configured one",
			EnvVar: "DEGEN_CONTRACT",
		},
		cli.DurationFlag{
			Name:  timeoutFlagName + ", t",
			Usage: "Timeout for the whole command including transaction awaiting",
			Value: 2 * time.Minute,
		},
		cli.BoolFlag{
			Name:  debugFlagName + ", d",
			Usage: "Enable debug logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "deploy",
			Usage:     "Deploy DegenToken contract",
			ArgsUsage: " ",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  artifactsFlagName,
					Usage: "Root directory of compiled contracts",
					Value: "contracts",
				},
				cli.StringFlag{
					Name:  ownerFlagName,
					Usage: "Contract owner address, signing account if not set",
				},
			},
			Action: deployAction,
		},
		{
			Name:      "mint",
			Usage:     "Create new tokens on the account (owner only)",
			ArgsUsage: "TO AMOUNT",
			Action:    mintAction,
		},
		{
			Name:      "transfer",
			Usage:     "Transfer tokens from the signing account",
			ArgsUsage: "TO AMOUNT",
			Action:    transferAction,
		},
		{
			Name:      "burn",
			Usage:     "Destroy tokens of the signing account",
			ArgsUsage: "AMOUNT",
			Action:    burnAction,
		},
		{
			Name:      "allow-redeem",
			Usage:     "Allow account to redeem tokens (owner only)",
			ArgsUsage: "ACCOUNT",
			Action:    allowRedeemAction,
		},
		{
			Name:      "redeem",
			Usage:     "Redeem tokens of the signing account for the catalog item",
			ArgsUsage: "ITEM",
			Action:    redeemAction,
		},
		{
			Name:      "balance",
			Usage:     "Print token balance of the account, signing account if not set",
			ArgsUsage: "[ACCOUNT]",
			Action:    balanceAction,
		},
		{
			Name:      "prices",
			Usage:     "Print redemption prices of catalog items",
			ArgsUsage: "[ITEM...]",
			Action:    pricesAction,
		},
		{
			Name:      "info",
			Usage:     "Print contract information",
			ArgsUsage: " ",
			Action:    infoAction,
		},
		{
			Name:      "holders",
			Usage:     "Print all non-zero balances from the contract storage (requires state service)",
			ArgsUsage: " ",
			Action:    holdersAction,
		},
	}

	return app
}
