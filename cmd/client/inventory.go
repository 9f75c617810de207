package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Barcode inventory lookups and shelf stocking",
}

var (
	lookupCmd = &cobra.Command{
		Use:   "lookup <barcode>",
		Short: "Show a master row by barcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			it, err := client.Item(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, it)
		},
	}

	rctCmd = &cobra.Command{
		Use:   "rct <code>",
		Short: "Show a master row by rct code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			it, err := client.ItemByRCT(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, it)
		},
	}

	stockCmd = &cobra.Command{
		Use:   "stock <barcode> <location>",
		Short: "Place a copy of a master row on a shelf",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			pl, err := client.Stock(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, pl)
		},
	}

	shelfCmd = &cobra.Command{
		Use:   "shelf <location> <barcode>...",
		Short: "Replace everything on a shelf with the given barcodes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			placements, err := client.ReplaceShelf(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d products placed at %s\n", len(placements), args[0])
			return nil
		},
	}

	listAll      bool
	listLocation string

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List placements, a shelf (--location) or the master table (--all)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			switch {
			case listAll:
				items, err := client.Items(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, items)
			case listLocation != "":
				placements, err := client.PlacementsAt(cmd.Context(), listLocation)
				if err != nil {
					return err
				}
				return printJSON(cmd, placements)
			}
			placements, err := client.Placements(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, placements)
		},
	}

	searchByRCT bool

	searchCmd = &cobra.Command{
		Use:   "search <barcode>",
		Short: "Show a master row with all of its placements (by rct with --rct)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			if searchByRCT {
				res, err := client.SearchByRCT(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			}
			res, err := client.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}

	moveCmd = &cobra.Command{
		Use:   "move <placementId> <location>",
		Short: "Move a placement to another shelf",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			if err := client.Relocate(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "location updated")
			return nil
		},
	}

	removeCmd = &cobra.Command{
		Use:   "remove <placementId>",
		Short: "Remove a placement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			if err := client.DeletePlacement(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "placement removed")
			return nil
		},
	}
)

func init() {
	searchCmd.Flags().BoolVar(&searchByRCT, "rct", false, "search by rct code instead of barcode")
	listCmd.Flags().BoolVar(&listAll, "all", false, "list the master table")
	listCmd.Flags().StringVar(&listLocation, "location", "", "list one shelf")

	inventoryCmd.AddCommand(lookupCmd, rctCmd, stockCmd, shelfCmd, listCmd, searchCmd, moveCmd, removeCmd)
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
