package commands

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"spendboard/internal/analytics"
	"spendboard/internal/format"
	"spendboard/internal/risk"
)

type summary struct {
	Fingerprint        string          `json:"fingerprint"`
	Total2024          decimal.Decimal `json:"total_2024"`
	Total2025          decimal.Decimal `json:"total_2025"`
	Growth             string          `json:"growth"`
	Top5Share          float64         `json:"top5_share"`
	Top10Share         float64         `json:"top10_share"`
	HighDependency     int             `json:"high_dependency"`
	SignificantDecline int             `json:"significant_decline"`
	ExposedSuppliers   int             `json:"exposed_suppliers"`
	Flagged            int             `json:"flagged_indicators"`
	Plants             []plantSplit    `json:"plants"`
}

// plantSplit is the supplier spend of one plant, summed from the
// unpivoted supplier records.
type plantSplit struct {
	Plant string          `json:"plant"`
	Y2024 decimal.Decimal `json:"y2024"`
	Y2025 decimal.Decimal `json:"y2025"`
}

func (c *CLI) newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print headline totals and risk indicators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			ds, err := c.load(cmd.Context())
			if err != nil {
				return err
			}
			reg, err := c.register()
			if err != nil {
				return err
			}

			o := analytics.NewOverview(ds, c.cfg.RegionPrefixes)
			ind := risk.ComputeIndicators(ds)
			s := summary{
				Fingerprint:        ds.Fingerprint,
				Total2024:          o.Total.Y2024,
				Total2025:          o.Total.Y2025,
				Growth:             o.Total.Growth().Label(),
				Top5Share:          o.Concentration.Top5Share,
				Top10Share:         o.Concentration.Top10Share,
				HighDependency:     ind.HighDependency,
				SignificantDecline: len(ind.SignificantDecline),
				ExposedSuppliers:   risk.ExposedSuppliers(reg, ds),
				Flagged:            ind.Flagged(),
			}
			for _, g := range analytics.ByFactory(ds.Records()) {
				name := g.Key
				if name == "" {
					name = "未拆分"
				}
				s.Plants = append(s.Plants, plantSplit{Plant: name, Y2024: g.Y2024, Y2025: g.Y2025})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}

			fmt.Fprintf(out, "2024年入库金额:   %s\n", format.Yi(s.Total2024))
			fmt.Fprintf(out, "2025年预测采购额: %s (%s)\n", format.Yi(s.Total2025), s.Growth)
			for _, f := range o.Factories {
				fmt.Fprintf(out, "  %-12s %s -> %s  %s\n", f.Unit, format.Wan(f.Y2024), format.Wan(f.Y2025), f.Growth.Label())
			}
			fmt.Fprintln(out, "供应商工厂拆分:")
			for _, p := range s.Plants {
				fmt.Fprintf(out, "  %-12s %s -> %s\n", p.Plant, format.Wan(p.Y2024), format.Wan(p.Y2025))
			}
			fmt.Fprintf(out, "Top5供应商占比:   %s\n", format.Percent(s.Top5Share))
			fmt.Fprintf(out, "Top10供应商占比:  %s\n", format.Percent(s.Top10Share))
			fmt.Fprintf(out, "高依赖供应商:     %d\n", s.HighDependency)
			fmt.Fprintf(out, "大幅下滑子品类:   %d\n", s.SignificantDecline)
			fmt.Fprintf(out, "高风险暴露供应商: %d\n", s.ExposedSuppliers)
			fmt.Fprintf(out, "预警指标:         %d/3\n", s.Flagged)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print JSON instead of text")
	return cmd
}
