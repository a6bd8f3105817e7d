package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"cinema-cli/domain"
	"cinema-cli/ticket"
	"cinema-cli/workflow"

	"github.com/spf13/cobra"
)

func ticketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "Your bookings",
	}

	cmd.AddCommand(ticketsListCmd())
	cmd.AddCommand(ticketsShowCmd())
	cmd.AddCommand(ticketsQRCmd())
	cmd.AddCommand(ticketsPDFCmd())
	cmd.AddCommand(ticketsCancelCmd())
	return cmd
}

func ticketsListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			userID := ""
			if user, ok := service.Session().CachedUser(); ok {
				userID = user.ID
			}
			list, err := service.ListUserBookings(ctx, userID)
			if err == nil && status != "" {
				filtered := list.Bookings[:0]
				for _, b := range list.Bookings {
					if strings.EqualFold(string(b.Status), status) {
						filtered = append(filtered, b)
					}
				}
				list.Bookings = filtered
			}
			return emit(list, err, func(list workflow.BookingList) error {
				printDegraded(list.Degraded)
				if len(list.Bookings) == 0 {
					fmt.Println("No bookings found.")
					return nil
				}
				writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
				if !outputCompact {
					fmt.Fprintln(writer, "CODE\tSTUDIO\tSEATS\tTYPE\tSTATUS\tBOOKED")
				}
				for _, b := range list.Bookings {
					booked := ""
					if !b.Timestamp.IsZero() {
						booked = b.Timestamp.Local().Format("2006-01-02 15:04")
					}
					fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
						strings.ToUpper(b.ID), b.StudioName, strings.Join(b.Seats, ","), b.BookingType, statusLabel(b.Status), booked)
				}
				return writer.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only bookings with this status (active, used, cancelled)")
	return cmd
}

func findBooking(code string) (domain.Booking, error) {
	ctx, cancel := requestContext()
	defer cancel()
	return service.GetBookingByID(ctx, strings.TrimSpace(code))
}

func ticketsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <code>",
		Short: "Show one booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			booking, err := findBooking(args[0])
			return emit(booking, err, func(b domain.Booking) error {
				printBooking(b)
				if b.UserName != "" {
					fmt.Printf("Customer: %s %s\n", b.UserName, b.UserEmail)
				}
				if !b.Timestamp.IsZero() {
					fmt.Printf("Booked at: %s\n", b.Timestamp.Local().Format("Mon 2 Jan 2006 15:04"))
				}
				return nil
			})
		},
	}

	return cmd
}

func ticketsQRCmd() *cobra.Command {
	var pngPath string

	cmd := &cobra.Command{
		Use:   "qr <code>",
		Short: "Print or save the ticket QR code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			booking, err := findBooking(args[0])
			if err != nil {
				return emit(booking, err, nil)
			}
			if pngPath == "" {
				return printTerminalQR(booking)
			}
			image, err := ticket.Image(booking)
			if err != nil {
				return err
			}
			if err := os.WriteFile(pngPath, image, 0o644); err != nil {
				return err
			}
			fmt.Printf("Saved QR code to %s.\n", pngPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&pngPath, "png", "", "Write the QR image to this file instead")
	return cmd
}

func ticketsPDFCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "pdf <code>",
		Short: "Save a printable e-ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			booking, err := findBooking(args[0])
			if err != nil {
				return emit(booking, err, nil)
			}
			if out == "" {
				out = fmt.Sprintf("ticket-%s.pdf", strings.ToUpper(booking.ID))
			}
			data, err := ticket.PDF(booking)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Saved e-ticket to %s.\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file (default: ticket-<CODE>.pdf)")
	return cmd
}

func ticketsCancelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <code>",
		Short: "Cancel a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()
			err := service.CancelBooking(ctx, strings.TrimSpace(args[0]))
			return emit(struct{}{}, err, func(struct{}) error {
				fmt.Println("Cancelled.")
				return nil
			})
		},
	}

	return cmd
}
