package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"cinema-cli/domain"
	"cinema-cli/seatmap"

	"github.com/spf13/cobra"
)

func studiosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "studios",
		Short: "Browse studios and seats",
	}

	cmd.AddCommand(studiosListCmd())
	cmd.AddCommand(studiosShowCmd())
	cmd.AddCommand(studiosSeatsCmd())
	return cmd
}

func studiosListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List studios",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()
			studios, err := service.ListStudios(ctx)
			return emit(studios, err, func(studios []domain.Studio) error {
				if len(studios) == 0 {
					fmt.Println("No studios found.")
					return nil
				}
				writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
				if !outputCompact {
					fmt.Fprintln(writer, "ID\tNAME\tSEATS")
				}
				for _, studio := range studios {
					fmt.Fprintf(writer, "%s\t%s\t%d\n", studio.ID, studio.Name, studio.TotalSeats)
				}
				return writer.Flush()
			})
		},
	}

	return cmd
}

func studiosShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <studio-id>",
		Short: "Show a studio and its seat map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()
			studio, seats, err := service.StudioSeats(ctx, strings.TrimSpace(args[0]))
			return emit(studio, err, func(studio domain.Studio) error {
				fmt.Printf("%s (studio %s)\n", studio.Name, studio.ID)
				fmt.Printf("Capacity: %d | Booked: %d\n", studio.TotalSeats, len(studio.BookedSeats))
				if outputCompact {
					return nil
				}
				if seats == nil {
					fmt.Fprintln(os.Stderr, "warning: seat map unavailable")
					return nil
				}
				fmt.Println()
				renderGrid(os.Stdout, seats)
				return nil
			})
		},
	}

	return cmd
}

func studiosSeatsCmd() *cobra.Command {
	var availableOnly bool

	cmd := &cobra.Command{
		Use:   "seats <studio-id>",
		Short: "List the seats of a studio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			studioID := strings.TrimSpace(args[0])
			ctx, cancel := requestContext()
			defer cancel()

			if availableOnly {
				numbers, err := service.AvailableSeats(ctx, studioID)
				return emit(numbers, err, func(numbers []string) error {
					if len(numbers) == 0 {
						fmt.Println("No free seats.")
						return nil
					}
					fmt.Println(strings.Join(numbers, " "))
					return nil
				})
			}

			seats, err := service.AllSeats(ctx, studioID)
			return emit(seats, err, func(seats []seatmap.Seat) error {
				if outputCompact {
					renderGrid(os.Stdout, seats)
					return nil
				}
				writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
				fmt.Fprintln(writer, "SEAT\tID\tSTATUS")
				for _, seat := range seats {
					status := "free"
					if !seat.Available {
						status = "taken"
					}
					fmt.Fprintf(writer, "%s\t%d\t%s\n", seat.Number, seat.ID, status)
				}
				return writer.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&availableOnly, "available", false, "Only list free seat numbers")
	return cmd
}
