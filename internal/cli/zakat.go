package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toolshub/internal/zakat"
)

type zakatOptions struct {
	*rootOptions

	assets zakat.Assets
	calc   zakat.Options
	format string
}

func newZakatCmd(root *rootOptions) *cobra.Command {
	o := &zakatOptions{rootOptions: root, calc: zakat.DefaultOptions()}

	cmd := &cobra.Command{
		Use:   "zakat",
		Short: "Calculate zakat due on your assets",
		Long: `Calculate zakat on declared wealth.

Debts are subtracted from the sum of all assets. If what remains reaches the
nisab threshold, zakat is due at the given rate on the whole amount.

Example:
  toolshub zakat --cash 5000 --gold 2000 --debts 1000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&o.assets.Cash, "cash", 0, "cash and bank balances")
	flags.Float64Var(&o.assets.Gold, "gold", 0, "value of gold")
	flags.Float64Var(&o.assets.Silver, "silver", 0, "value of silver")
	flags.Float64Var(&o.assets.Investments, "investments", 0, "value of investments")
	flags.Float64Var(&o.assets.Business, "business", 0, "business assets")
	flags.Float64Var(&o.assets.Debts, "debts", 0, "outstanding debts")
	flags.Float64Var(&o.calc.NisabThreshold, "nisab", zakat.DefaultNisabThreshold, "nisab threshold")
	flags.Float64Var(&o.calc.Rate, "rate", zakat.DefaultRate, "zakat rate")
	flags.StringVarP(&o.format, "format", "f", "table", "output format (table, json)")

	return cmd
}

func (o *zakatOptions) run(cmd *cobra.Command) error {
	res, err := zakat.Calculate(o.assets, o.calc)
	if err != nil {
		return err
	}

	switch o.format {
	case "json":
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return writeOutput(cmd, "", string(data)+"\n")
	case "table":
		return writeOutput(cmd, "", formatZakat(o.assets, res))
	default:
		return fmt.Errorf("unsupported format: %s (supported: table, json)", o.format)
	}
}

func formatZakat(a zakat.Assets, res zakat.Result) string {
	table := NewTable("ITEM", "AMOUNT")
	table.SetAlign(1, AlignRight)

	money := func(v float64) string { return fmt.Sprintf("%.2f", v) }
	table.AddRow("Total assets", money(res.TotalAssets))
	table.AddRow("Debts", money(a.Debts))
	table.AddRow("Zakatable wealth", money(res.Zakatable))
	table.AddRow("Nisab threshold", money(res.Nisab))
	table.AddRow("Zakat due", money(res.Due))

	var sb strings.Builder
	sb.WriteString(table.Render())
	if res.BelowNisab {
		sb.WriteString("\nWealth is below the nisab threshold; no zakat is due.\n")
	}
	return sb.String()
}
