package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"optiondesk/internal/chain"
	"optiondesk/internal/greeks"
	"optiondesk/internal/maxpain"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "greeks",
		Short:         "Black-Scholes prices, greeks and max pain for index options",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().Float64("rate", greeks.DefaultRiskFreeRate, "risk-free rate in percent")
	root.AddCommand(newPriceCmd(), newIVCmd(), newChainCmd(), newMaxPainCmd())
	return root
}

func newPriceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price one strike",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			spot, _ := f.GetFloat64("spot")
			strike, _ := f.GetFloat64("strike")
			days, _ := f.GetFloat64("days")
			vol, _ := f.GetFloat64("vol")
			rate, _ := cmd.Flags().GetFloat64("rate")
			res, err := greeks.Price(spot, strike, days, vol, rate)
			if err != nil {
				return err
			}
			table := newTable(cmd.OutOrStdout(), []string{"call", "put", "delta", "gamma", "theta", "vega"})
			table.Append([]string{
				fmtFloat(res.CallPrice), fmtFloat(res.PutPrice), fmtFloat(res.Delta),
				fmtFloat(res.Gamma), fmtFloat(res.Theta), fmtFloat(res.Vega),
			})
			table.Render()
			return nil
		},
	}
	cmd.Flags().Float64("spot", 0, "underlying price")
	cmd.Flags().Float64("strike", 0, "strike price")
	cmd.Flags().Float64("days", 0, "calendar days to expiry")
	cmd.Flags().Float64("vol", 0, "implied volatility in percent")
	_ = cmd.MarkFlagRequired("spot")
	_ = cmd.MarkFlagRequired("strike")
	_ = cmd.MarkFlagRequired("days")
	_ = cmd.MarkFlagRequired("vol")
	return cmd
}

func newIVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iv",
		Short: "Implied volatility from an option premium",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			typ, _ := f.GetString("type")
			optType, ok := greeks.ParseOptionType(typ)
			if !ok {
				return fmt.Errorf("unknown option type %q", typ)
			}
			premium, _ := f.GetFloat64("premium")
			spot, _ := f.GetFloat64("spot")
			strike, _ := f.GetFloat64("strike")
			days, _ := f.GetFloat64("days")
			rate, _ := f.GetFloat64("rate")
			iv, err := greeks.ImpliedVolatility(greeks.IVRequest{
				Type:         optType,
				Premium:      premium,
				Spot:         spot,
				Strike:       strike,
				DaysToExpiry: days,
				RiskFreeRate: &rate,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", fmtFloat(iv))
			return nil
		},
	}
	cmd.Flags().String("type", "call", "call|put (CE/PE accepted)")
	cmd.Flags().Float64("premium", 0, "observed option premium")
	cmd.Flags().Float64("spot", 0, "underlying price")
	cmd.Flags().Float64("strike", 0, "strike price")
	cmd.Flags().Float64("days", 0, "calendar days to expiry")
	_ = cmd.MarkFlagRequired("premium")
	_ = cmd.MarkFlagRequired("spot")
	_ = cmd.MarkFlagRequired("strike")
	_ = cmd.MarkFlagRequired("days")
	return cmd
}

func newChainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Price every strike of a chain CSV (strike,call_oi,put_oi,call_iv,put_iv)",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			path, _ := f.GetString("csv")
			spot, _ := f.GetFloat64("spot")
			days, _ := f.GetFloat64("days")
			rate, _ := f.GetFloat64("rate")
			rows, err := readRows(path)
			if err != nil {
				return err
			}
			svc := chain.NewService(chain.NewMemorySnapshotStore(), rate)
			priced, err := svc.Price(cmd.Context(), chain.Chain{Spot: spot, DaysToExpiry: days, Rows: rows})
			if err != nil {
				return err
			}
			return renderChain(cmd.OutOrStdout(), priced)
		},
	}
	cmd.Flags().String("csv", "", "chain CSV path")
	cmd.Flags().Float64("spot", 0, "underlying price")
	cmd.Flags().Float64("days", 0, "calendar days to expiry")
	_ = cmd.MarkFlagRequired("csv")
	_ = cmd.MarkFlagRequired("spot")
	_ = cmd.MarkFlagRequired("days")
	return cmd
}

func newMaxPainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maxpain",
		Short: "Max pain strike from a chain CSV (strike,call_oi,put_oi)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("csv")
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			var rows []maxpain.StrikeOI
			if err := gocsv.Unmarshal(f, &rows); err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			res, err := maxpain.Compute(rows)
			if err != nil {
				return err
			}
			return renderMaxPain(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().String("csv", "", "chain CSV path")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

func readRows(path string) ([]chain.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows []chain.Row
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

func renderChain(w io.Writer, p chain.Priced) error {
	table := newTable(w, []string{"strike", "call oi", "call", "delta", "theta", "put", "put oi", "error"})
	for _, row := range p.Rows {
		line := []string{fmtFloat(row.Strike), fmtFloat(row.CallOI), "-", "-", "-", "-", fmtFloat(row.PutOI), ""}
		if g := row.Call.Greeks; g != nil {
			line[2], line[3], line[4] = fmtFloat(g.CallPrice), fmtFloat(g.Delta), fmtFloat(g.Theta)
		} else {
			line[7] = row.Call.Error
		}
		if g := row.Put.Greeks; g != nil {
			line[5] = fmtFloat(g.PutPrice)
		} else if line[7] == "" {
			line[7] = row.Put.Error
		}
		table.Append(line)
	}
	table.Render()
	if p.MaxPain == nil {
		_, err := fmt.Fprintf(w, "max pain unavailable: %s\n", p.MaxPainError)
		return err
	}
	_, err := fmt.Fprintf(w, "max pain %s  pcr %s\n", fmtFloat(p.MaxPain.Strike), fmtFloat(p.MaxPain.PCR))
	return err
}

func renderMaxPain(w io.Writer, res maxpain.Result) error {
	table := newTable(w, []string{"strike", "call pain", "put pain", "total"})
	for _, p := range res.Pains {
		table.Append([]string{fmtFloat(p.Strike), fmtFloat(p.CallPain), fmtFloat(p.PutPain), fmtFloat(p.TotalPain)})
	}
	table.Render()
	_, err := fmt.Fprintf(w, "max pain %s  pcr %s\n", fmtFloat(res.Strike), fmtFloat(res.PCR))
	return err
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
