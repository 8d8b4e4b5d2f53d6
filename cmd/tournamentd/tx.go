package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/spf13/cobra"

	"onchaintournament/internal/codec"
)

const (
	flagSigner   = "signer"
	flagSeed     = "seed"
	flagNonce    = "nonce"
	flagDecimals = "decimals"
	flagHex      = "hex"
)

type txBuilder func(cmd *cobra.Command, args []string, decimals int32) (any, error)

// newTxCmd groups the commands that build and sign tx envelopes. The signed
// envelope is printed as JSON, or hex with --hex for broadcast_tx_* RPCs.
func newTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Build and sign transactions",
	}
	pf := cmd.PersistentFlags()
	pf.String(flagSigner, "", "signer account")
	pf.String(flagSeed, "", "ed25519 key seed (defaults to the signer name)")
	pf.String(flagNonce, "", "tx nonce (defaults to the current unix time in nanoseconds)")
	pf.Int32(flagDecimals, 18, "decimal places of the base unit")
	pf.Bool(flagHex, false, "print hex-encoded tx bytes instead of JSON")

	cmd.AddCommand(
		signedCmd("start", codec.TypeTournamentStart, "Start a tournament", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, dec int32) (any, error) {
				price, err := amountFlag(cmd, "price", dec)
				if err != nil {
					return nil, err
				}
				minTickets, _ := cmd.Flags().GetUint64("min-tickets")
				end, _ := cmd.Flags().GetInt64("end-date")
				return codec.TournamentStartTx{TicketPrice: price, MinTickets: minTickets, EndDate: end}, nil
			},
			func(c *cobra.Command) {
				c.Flags().String("price", "", "ticket price in whole units")
				c.Flags().Uint64("min-tickets", 0, "minimum tickets")
				c.Flags().Int64("end-date", 0, "sales end (unix seconds)")
			}),
		signedCmd("buy", codec.TypeTournamentBuyTickets, "Buy tickets", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, dec int32) (any, error) {
				payment, err := amountFlag(cmd, "payment", dec)
				if err != nil {
					return nil, err
				}
				id, _ := cmd.Flags().GetUint64("id")
				qty, _ := cmd.Flags().GetUint64("quantity")
				return codec.TournamentBuyTicketsTx{TournamentID: id, Quantity: qty, Payment: payment}, nil
			},
			func(c *cobra.Command) {
				c.Flags().Uint64("id", 0, "tournament id")
				c.Flags().Uint64("quantity", 0, "number of tickets")
				c.Flags().String("payment", "", "attached payment in whole units (quantity x price)")
			}),
		signedCmd("end", codec.TypeTournamentEnd, "End a tournament", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, _ int32) (any, error) {
				id, _ := cmd.Flags().GetUint64("id")
				return codec.TournamentEndTx{TournamentID: id}, nil
			},
			func(c *cobra.Command) { c.Flags().Uint64("id", 0, "tournament id") }),
		signedCmd("distribute [winner=amount]...", codec.TypeTournamentDistribute, "Distribute rewards", cobra.MinimumNArgs(1),
			func(cmd *cobra.Command, args []string, dec int32) (any, error) {
				id, _ := cmd.Flags().GetUint64("id")
				msg := codec.TournamentDistributeTx{TournamentID: id}
				for _, arg := range args {
					winner, raw, ok := strings.Cut(arg, "=")
					if !ok || winner == "" {
						return nil, fmt.Errorf("expected winner=amount, got %q", arg)
					}
					amt, err := parseAmount(raw, dec)
					if err != nil {
						return nil, err
					}
					msg.Winners = append(msg.Winners, winner)
					msg.Amounts = append(msg.Amounts, amt)
				}
				return msg, nil
			},
			func(c *cobra.Command) { c.Flags().Uint64("id", 0, "tournament id") }),
		signedCmd("withdraw", codec.TypeManagerWithdraw, "Withdraw from the manager balance", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, dec int32) (any, error) {
				amt, err := amountFlag(cmd, "amount", dec)
				if err != nil {
					return nil, err
				}
				return codec.ManagerWithdrawTx{Amount: amt}, nil
			},
			func(c *cobra.Command) { c.Flags().String("amount", "", "amount in whole units") }),
		signedCmd("send", codec.TypeBankSend, "Send funds", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, dec int32) (any, error) {
				amt, err := amountFlag(cmd, "amount", dec)
				if err != nil {
					return nil, err
				}
				to, _ := cmd.Flags().GetString("to")
				return codec.BankSendTx{To: to, Amount: amt}, nil
			},
			func(c *cobra.Command) {
				c.Flags().String("to", "", "recipient")
				c.Flags().String("amount", "", "amount in whole units")
			}),
		signedCmd("mint", codec.TypeBankMint, "Mint funds (admin only)", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, dec int32) (any, error) {
				amt, err := amountFlag(cmd, "amount", dec)
				if err != nil {
					return nil, err
				}
				to, _ := cmd.Flags().GetString("to")
				return codec.BankMintTx{To: to, Amount: amt}, nil
			},
			func(c *cobra.Command) {
				c.Flags().String("to", "", "recipient")
				c.Flags().String("amount", "", "amount in whole units")
			}),
		signedCmd("register", codec.TypeAuthRegisterAccount, "Register the signer's public key", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, _ int32) (any, error) {
				signer, seed := signerAndSeed(cmd)
				pub, _ := codec.KeyFromSeed(seed)
				return codec.AuthRegisterAccountTx{Account: signer, PubKey: pub}, nil
			}, nil),
		signedCmd("raw <type> <json-value>", "", "Sign an arbitrary tx value", cobra.ExactArgs(2),
			func(_ *cobra.Command, args []string, _ int32) (any, error) {
				if !json.Valid([]byte(args[1])) {
					return nil, fmt.Errorf("value is not valid JSON")
				}
				return json.RawMessage(args[1]), nil
			}, nil),
	)
	return cmd
}

func signedCmd(use, typ, short string, args cobra.PositionalArgs, build txBuilder, flags func(*cobra.Command)) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			txType := typ
			if txType == "" {
				txType = args[0]
			}
			dec, _ := cmd.Flags().GetInt32(flagDecimals)
			value, err := build(cmd, args, dec)
			if err != nil {
				return err
			}
			signer, seed := signerAndSeed(cmd)
			if signer == "" {
				return fmt.Errorf("--%s is required", flagSigner)
			}
			nonce, _ := cmd.Flags().GetString(flagNonce)
			if nonce == "" {
				nonce = strconv.FormatInt(time.Now().UnixNano(), 10)
			}
			_, priv := codec.KeyFromSeed(seed)
			b, err := codec.NewSignedTx(txType, value, nonce, signer, priv)
			if err != nil {
				return err
			}
			if asHex, _ := cmd.Flags().GetBool(flagHex); asHex {
				cmd.Println("0x" + hex.EncodeToString(b))
				return nil
			}
			cmd.Println(string(b))
			return nil
		},
	}
	if flags != nil {
		flags(c)
	}
	return c
}

func signerAndSeed(cmd *cobra.Command) (string, string) {
	signer, _ := cmd.Flags().GetString(flagSigner)
	seed, _ := cmd.Flags().GetString(flagSeed)
	if seed == "" {
		seed = signer
	}
	return signer, seed
}

func amountFlag(cmd *cobra.Command, name string, decimals int32) (sdkmath.Int, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return sdkmath.Int{}, fmt.Errorf("--%s is required", name)
	}
	return parseAmount(raw, decimals)
}
