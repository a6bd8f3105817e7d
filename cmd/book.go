package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cinema-cli/domain"
	"cinema-cli/ticket"
	"cinema-cli/workflow"

	"github.com/spf13/cobra"
)

func bookCmd() *cobra.Command {
	var studioID string
	var seats string
	var showQR bool

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book seats online",
		RunE: func(cmd *cobra.Command, args []string) error {
			if studioID == "" || seats == "" {
				return fmt.Errorf("--studio and --seats are required")
			}
			if service.Session().TokenExpired(time.Now()) {
				return fmt.Errorf("token expired. Run 'cinema auth login' to re-authenticate")
			}

			booking, err := createBooking(workflow.CreateBookingRequest{
				StudioID: studioID,
				Seats:    parseSeats(seats),
				Type:     domain.Online,
			})
			if err == nil {
				recordTicket(booking, "online")
			}
			return emit(booking, err, func(b domain.Booking) error {
				printBooking(b)
				if showQR {
					return printTerminalQR(b)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&studioID, "studio", "", "Studio id")
	cmd.Flags().StringVar(&seats, "seats", "", "Comma separated seat numbers, e.g. A1,A2")
	cmd.Flags().BoolVar(&showQR, "qr", false, "Print the ticket QR code")
	return cmd
}

func cashierCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cashier",
		Short: "Box office operations",
	}
	cmd.AddCommand(cashierBookCmd())
	return cmd
}

func cashierBookCmd() *cobra.Command {
	var studioID string
	var seats string
	var name string
	var email string
	var showQR bool

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book seats for a walk-in customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if studioID == "" || seats == "" {
				return fmt.Errorf("--studio and --seats are required")
			}
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name is required")
			}

			booking, err := createBooking(workflow.CreateBookingRequest{
				StudioID:      studioID,
				Seats:         parseSeats(seats),
				Type:          domain.Offline,
				CustomerName:  name,
				CustomerEmail: email,
			})
			if err == nil {
				recordTicket(booking, "cashier")
			}
			return emit(booking, err, func(b domain.Booking) error {
				printBooking(b)
				if showQR {
					return printTerminalQR(b)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&studioID, "studio", "", "Studio id")
	cmd.Flags().StringVar(&seats, "seats", "", "Comma separated seat numbers, e.g. A1,A2")
	cmd.Flags().StringVar(&name, "name", "", "Customer name")
	cmd.Flags().StringVar(&email, "email", "", "Customer email")
	cmd.Flags().BoolVar(&showQR, "qr", false, "Print the ticket QR code")
	return cmd
}

// createBooking reloads the studio's seats so resolution runs against the
// current layout, then submits the booking.
func createBooking(req workflow.CreateBookingRequest) (domain.Booking, error) {
	ctx, cancel := requestContext()
	defer cancel()
	if _, ok := service.Session().Token(); !ok && req.Type == domain.Online {
		return service.CreateBooking(ctx, req)
	}
	if err := refreshStudio(ctx, req.StudioID); err != nil {
		return domain.Booking{}, err
	}
	return service.CreateBooking(ctx, req)
}

func refreshStudio(ctx context.Context, studioID string) error {
	_, err := service.AllSeats(ctx, studioID)
	return err
}

func printBooking(b domain.Booking) {
	fmt.Printf("Booked: %s | seats %s\n", b.StudioName, strings.Join(b.Seats, ", "))
	fmt.Printf("Booking code: %s (%s, %s)\n", strings.ToUpper(b.ID), b.BookingType, statusLabel(b.Status))
}

func printTerminalQR(b domain.Booking) error {
	qr, err := ticket.Terminal(b)
	if err != nil {
		return err
	}
	fmt.Print(qr)
	return nil
}
