package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	rafflev1 "github.com/ark-network/raffle/pkg/api/raffle/v1"
	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	DatadirEnvVar   = "RAFFLE_CLI_DATADIR"
	OracleKeyEnvVar = "RAFFLE_CLI_ORACLE_KEY"

	stateFile = "state.json"

	urlKey     = "url"
	addressKey = "address"
)

var version = "alpha"

var (
	datadirFlag = &cli.StringFlag{
		Name:    "datadir",
		Usage:   "Specify the data directory",
		Value:   appDataDir("raffle-cli"),
		EnvVars: []string{DatadirEnvVar},
	}
	urlFlag = &cli.StringFlag{
		Name:     "url",
		Usage:    "the address of the raffled daemon to connect to",
		Required: true,
	}
	addressFlag = &cli.StringFlag{
		Name:  "address",
		Usage: "the account to act as, 0x-prefixed",
	}
	amountFlag = &cli.StringFlag{
		Name:     "amount",
		Usage:    "amount in wei",
		Required: true,
	}
	valueFlag = &cli.StringFlag{
		Name:  "value",
		Usage: "value to pay in wei, defaults to the entrance fee",
	}
	payableFlag = &cli.BoolFlag{
		Name:  "payable",
		Usage: "whether the account accepts value",
		Value: true,
	}
	performFlag = &cli.BoolFlag{
		Name:  "perform",
		Usage: "close the round if the upkeep is needed",
	}
	requestIdFlag = &cli.Uint64Flag{
		Name:     "request-id",
		Usage:    "id of the randomness request to fulfill",
		Required: true,
	}
	wordsFlag = &cli.StringSliceFlag{
		Name:     "word",
		Usage:    "random word to deliver, can be repeated",
		Required: true,
	}
	oracleKeyFlag = &cli.StringFlag{
		Name:     "oracle-key",
		Usage:    "hex private key of the oracle, used to sign the random words",
		EnvVars:  []string{OracleKeyEnvVar},
		Required: true,
	}
	limitFlag = &cli.Int64Flag{
		Name:  "limit",
		Usage: "max number of winners to list, 0 for all",
		Value: 10,
	}
)

func main() {
	app := cli.NewApp()

	app.Version = version
	app.Name = "raffle CLI"
	app.Usage = "command line interface for the raffled daemon"
	app.Commands = append(
		app.Commands,
		&initCommand,
		&configCommand,
		&infoCommand,
		&playersCommand,
		&balanceCommand,
		&depositCommand,
		&setPayableCommand,
		&enterCommand,
		&upkeepCommand,
		&fulfillCommand,
		&reissueCommand,
		&winnersCommand,
		&eventsCommand,
	)
	app.Flags = []cli.Flag{
		datadirFlag,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println(fmt.Errorf("error: %v", err))
		os.Exit(1)
	}
}

func getState(ctx *cli.Context) (map[string]string, error) {
	buf, err := os.ReadFile(filepath.Join(ctx.String(datadirFlag.Name), stateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("CLI not initialized, run 'init' first")
		}
		return nil, err
	}

	state := make(map[string]string)
	if err := json.Unmarshal(buf, &state); err != nil {
		return nil, fmt.Errorf("failed to read state: %s", err)
	}
	return state, nil
}

func setState(ctx *cli.Context, state map[string]string) error {
	datadir := ctx.String(datadirFlag.Name)
	if err := os.MkdirAll(datadir, os.ModeDir|0755); err != nil {
		return err
	}

	buf, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(datadir, stateFile), buf, 0600)
}

func getClient(ctx *cli.Context) (rafflev1.RaffleServiceClient, func(), error) {
	state, err := getState(ctx)
	if err != nil {
		return nil, nil, err
	}

	conn, err := grpc.NewClient(
		state[urlKey], grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %s", state[urlKey], err)
	}

	//nolint:errcheck
	closeFn := func() { conn.Close() }
	return rafflev1.NewRaffleServiceClient(conn), closeFn, nil
}

// getAddress returns the --address flag or the one stored at init.
func getAddress(ctx *cli.Context) (string, error) {
	if addr := ctx.String(addressFlag.Name); len(addr) > 0 {
		return addr, nil
	}
	state, err := getState(ctx)
	if err != nil {
		return "", err
	}
	addr := state[addressKey]
	if len(addr) <= 0 {
		return "", fmt.Errorf("missing address, use --address or set one at init")
	}
	return addr, nil
}

func printJSON(resp interface{}) error {
	jsonBytes, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return err
	}

	fmt.Println(string(jsonBytes))
	return nil
}

func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil || len(home) <= 0 {
		return filepath.Join(".", "."+appName)
	}
	return filepath.Join(home, "."+strings.ToLower(appName))
}
