package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"

	rafflev1 "github.com/ark-network/raffle/pkg/api/raffle/v1"
	"github.com/ark-network/raffle/pkg/oracle"
	"github.com/urfave/cli/v2"
)

var (
	initCommand = cli.Command{
		Name:   "init",
		Usage:  "Connect the CLI to a raffled daemon",
		Flags:  []cli.Flag{urlFlag, addressFlag},
		Action: initAction,
	}
	configCommand = cli.Command{
		Name:   "config",
		Usage:  "Shows the configuration of the CLI",
		Action: configAction,
	}
	infoCommand = cli.Command{
		Name:   "info",
		Usage:  "Shows the state of the raffle",
		Action: infoAction,
	}
	playersCommand = cli.Command{
		Name:   "players",
		Usage:  "Lists the players of the current round",
		Action: playersAction,
	}
	balanceCommand = cli.Command{
		Name:   "balance",
		Usage:  "Shows the balance of an account",
		Flags:  []cli.Flag{addressFlag},
		Action: balanceAction,
	}
	depositCommand = cli.Command{
		Name:   "deposit",
		Usage:  "Funds an account",
		Flags:  []cli.Flag{addressFlag, amountFlag},
		Action: depositAction,
	}
	setPayableCommand = cli.Command{
		Name:   "set-payable",
		Usage:  "Sets whether an account accepts value",
		Flags:  []cli.Flag{addressFlag, payableFlag},
		Action: setPayableAction,
	}
	enterCommand = cli.Command{
		Name:   "enter",
		Usage:  "Enters the current round paying the entrance fee",
		Flags:  []cli.Flag{addressFlag, valueFlag},
		Action: enterAction,
	}
	upkeepCommand = cli.Command{
		Name:   "upkeep",
		Usage:  "Checks whether the round can be closed",
		Flags:  []cli.Flag{performFlag},
		Action: upkeepAction,
	}
	fulfillCommand = cli.Command{
		Name:   "fulfill",
		Usage:  "Signs and delivers the random words of a pending request",
		Flags:  []cli.Flag{requestIdFlag, wordsFlag, oracleKeyFlag},
		Action: fulfillAction,
	}
	reissueCommand = cli.Command{
		Name:   "reissue",
		Usage:  "Replaces an expired randomness request, operator only",
		Flags:  []cli.Flag{addressFlag},
		Action: reissueAction,
	}
	winnersCommand = cli.Command{
		Name:   "winners",
		Usage:  "Lists the most recent winners",
		Flags:  []cli.Flag{limitFlag},
		Action: winnersAction,
	}
	eventsCommand = cli.Command{
		Name:   "events",
		Usage:  "Streams the raffle events",
		Action: eventsAction,
	}
)

func initAction(ctx *cli.Context) error {
	state := map[string]string{
		urlKey:     ctx.String(urlFlag.Name),
		addressKey: ctx.String(addressFlag.Name),
	}
	if err := setState(ctx, state); err != nil {
		return err
	}

	client, closeFn, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := client.GetInfo(ctx.Context, &rafflev1.GetInfoRequest{}); err != nil {
		return fmt.Errorf("failed to reach daemon: %s", err)
	}

	fmt.Println("CLI initialized")
	return nil
}

func configAction(ctx *cli.Context) error {
	state, err := getState(ctx)
	if err != nil {
		return err
	}
	return printJSON(state)
}

func infoAction(ctx *cli.Context) error {
	client, closeFn, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	resp, err := client.GetInfo(ctx.Context, &rafflev1.GetInfoRequest{})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func playersAction(ctx *cli.Context) error {
	client, closeFn, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	resp, err := client.GetPlayers(ctx.Context, &rafflev1.GetPlayersRequest{})
	if err != nil {
		return err
	}
	return printJSON(resp.Players)
}

func balanceAction(ctx *cli.Context) error {
	address, err := getAddress(ctx)
	if err != nil {
		return err
	}
	client, closeFn, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	resp, err := client.GetBalance(ctx.Context, &rafflev1.GetBalanceRequest{Address: address})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func depositAction(ctx *cli.Context) error {
	address, err := getAddress(ctx)
	if err != nil {
		return err
	}
	client, closeFn, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := client.Deposit(ctx.Context, &rafflev1.DepositRequest{
		Address: address,
		Amount:  ctx.String(amountFlag.Name),
	}); err != nil {
		return err
	}

	resp, err := client.GetBalance(ctx.Context, &rafflev1.GetBalanceRequest{Address: address})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func setPayableAction(ctx *cli.Context) error {
	address, err := getAddress(ctx)
	if err != nil {
		return err
	}
	client, closeFn, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	_, err = client.SetPayable(ctx.Context, &rafflev1.SetPayableRequest{
		Address: address,
		Payable: ctx.Bool(payableFlag.Name),
	})
	return err
}

func enterAction(ctx *cli.Context) error {
	address, err := getAddress(ctx)
	if err != nil {
		return err
	}
	client, closeFn, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	value := ctx.String(valueFlag.Name)
	if len(value) <= 0 {
		info, err := client.GetInfo(ctx.Context, &rafflev1.GetInfoRequest{})
		if err != nil {
			return err
		}
		value = info.EntranceFee
	}

	if _, err := client.Enter(ctx.Context, &rafflev1.EnterRequest{
		Player: address,
		Value:  value,
	}); err != nil {
		return err
	}

	fmt.Printf("%s entered the raffle paying %s\n", address, value)
	return nil
}

func upkeepAction(ctx *cli.Context) error {
	client, closeFn, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	check, err := client.CheckUpkeep(ctx.Context, &rafflev1.CheckUpkeepRequest{})
	if err != nil {
		return err
	}
	if !ctx.Bool(performFlag.Name) || !check.UpkeepNeeded {
		return printJSON(check)
	}

	resp, err := client.PerformUpkeep(ctx.Context, &rafflev1.PerformUpkeepRequest{})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func fulfillAction(ctx *cli.Context) error {
	key, err := oracle.ParsePrivKey(ctx.String(oracleKeyFlag.Name))
	if err != nil {
		return err
	}

	requestId := ctx.Uint64(requestIdFlag.Name)
	rawWords := ctx.StringSlice(wordsFlag.Name)
	words := make([]*big.Int, 0, len(rawWords))
	for _, w := range rawWords {
		word, ok := new(big.Int).SetString(w, 10)
		if !ok {
			return fmt.Errorf("invalid random word %s", w)
		}
		words = append(words, word)
	}
	signature, err := oracle.SignFulfillment(key, requestId, words)
	if err != nil {
		return err
	}

	client, closeFn, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	_, err = client.FulfillRandomWords(ctx.Context, &rafflev1.FulfillRandomWordsRequest{
		RequestId:   requestId,
		RandomWords: rawWords,
		Signature:   hex.EncodeToString(signature),
	})
	return err
}

func reissueAction(ctx *cli.Context) error {
	address, err := getAddress(ctx)
	if err != nil {
		return err
	}
	client, closeFn, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	resp, err := client.ReissueDrawRequest(ctx.Context, &rafflev1.ReissueDrawRequestRequest{
		Caller: address,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func winnersAction(ctx *cli.Context) error {
	client, closeFn, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	resp, err := client.ListWinners(ctx.Context, &rafflev1.ListWinnersRequest{
		Limit: ctx.Int64(limitFlag.Name),
	})
	if err != nil {
		return err
	}
	return printJSON(resp.Winners)
}

func eventsAction(ctx *cli.Context) error {
	client, closeFn, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	stream, err := client.GetEventStream(ctx.Context, &rafflev1.GetEventStreamRequest{})
	if err != nil {
		return err
	}

	for {
		event, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := printJSON(event); err != nil {
			return err
		}
	}
}
