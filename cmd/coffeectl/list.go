// server/cmd/coffeectl/list.go
package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"coffee-os-api-server/internal/geo"
	"coffee-os-api-server/pkg/client"

	"github.com/spf13/cobra"
)

var shopsCmd = &cobra.Command{Use: "shops", Short: "Coffee shops"}
var beansCmd = &cobra.Command{Use: "beans", Short: "Bean origins"}
var zonesCmd = &cobra.Command{Use: "zones", Short: "Map zones"}

var shopsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List coffee shops",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := client.ShopQuery{}
		q.Vibe, _ = cmd.Flags().GetString("vibe")
		q.Q, _ = cmd.Flags().GetString("q")
		q.MaxDistance, _ = cmd.Flags().GetFloat64("max-distance")
		if near, _ := cmd.Flags().GetString("near"); near != "" {
			point, err := geo.ParseLngLat(near)
			if err != nil {
				return err
			}
			q.Near = &point
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		shops, err := c.ListCoffeeShops(ctx, q)
		if err != nil {
			return err
		}

		w := table(cmd.OutOrStdout(), "ID", "NAME", "VIBE", "RATING", "ADDRESS")
		for _, s := range shops {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\n", s.ID.Hex(), s.Name, dash(s.Vibe), s.Rating, dash(s.Address))
		}
		return w.Flush()
	},
}

var beansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bean origins",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := client.BeanQuery{}
		q.Process, _ = cmd.Flags().GetString("process")
		q.RoastLevel, _ = cmd.Flags().GetString("roast-level")
		q.CoffeeShopID, _ = cmd.Flags().GetString("shop")
		q.Q, _ = cmd.Flags().GetString("q")

		c, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		beans, err := c.ListBeans(ctx, q)
		if err != nil {
			return err
		}

		w := table(cmd.OutOrStdout(), "ID", "NAME", "ROASTER", "PROCESS", "ROAST", "SHOP")
		for _, b := range beans {
			shop := "-"
			if b.CoffeeShop != nil {
				shop = b.CoffeeShop.Name
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", b.ID.Hex(), b.Name, dash(b.Roaster), dash(b.Process), dash(b.RoastLevel), shop)
		}
		return w.Flush()
	},
}

var zonesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List zones",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		zones, err := c.ListZones(ctx)
		if err != nil {
			return err
		}

		w := table(cmd.OutOrStdout(), "ID", "NAME", "VERTICES")
		for _, z := range zones {
			vertices := 0
			if len(z.Location.Coordinates) > 0 {
				vertices = len(z.Location.Coordinates[0])
			}
			fmt.Fprintf(w, "%s\t%s\t%d\n", z.ID.Hex(), z.Name, vertices)
		}
		return w.Flush()
	},
}

func table(out io.Writer, headers ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	return w
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	shopsListCmd.Flags().String("vibe", "", "filter by vibe (Focus, Social, Date, Fast, Chill)")
	shopsListCmd.Flags().String("q", "", "search name or address")
	shopsListCmd.Flags().String("near", "", "sort by distance from lng,lat")
	shopsListCmd.Flags().Float64("max-distance", 0, "with --near, maximum distance in metres")

	beansListCmd.Flags().String("process", "", "filter by process")
	beansListCmd.Flags().String("roast-level", "", "filter by roast level")
	beansListCmd.Flags().String("shop", "", "filter by coffee shop id")
	beansListCmd.Flags().String("q", "", "search name, roaster or region")

	shopsCmd.AddCommand(shopsListCmd)
	beansCmd.AddCommand(beansListCmd)
	zonesCmd.AddCommand(zonesListCmd)
	rootCmd.AddCommand(shopsCmd, beansCmd, zonesCmd)
}
