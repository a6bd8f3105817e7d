package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"cinema-cli/storage"

	"github.com/spf13/cobra"
)

type LedgerStats struct {
	TotalTickets     int            `json:"total_tickets"`
	TotalSeats       int            `json:"total_seats"`
	BySource         map[string]int `json:"by_source"`
	BusiestStudio    string         `json:"busiest_studio"`
	BusiestStudioQty int            `json:"busiest_studio_tickets"`
	LastBooked       string         `json:"last_booked"`
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Local record of tickets sold and scanned here",
	}

	cmd.AddCommand(ledgerListCmd())
	cmd.AddCommand(ledgerShowCmd())
	cmd.AddCommand(ledgerRemoveCmd())
	cmd.AddCommand(ledgerStatsCmd())
	cmd.AddCommand(ledgerExportCmd())
	return cmd
}

func ledgerFilter(status, studio, from, to string) (storage.TicketFilter, error) {
	filter := storage.TicketFilter{
		Status:   strings.ToLower(strings.TrimSpace(status)),
		StudioID: strings.TrimSpace(studio),
	}
	if from != "" {
		date, err := parseDateInput(from)
		if err != nil {
			return filter, err
		}
		filter.From = date.Format("2006-01-02")
	}
	if to != "" {
		date, err := parseDateInput(to)
		if err != nil {
			return filter, err
		}
		filter.To = date.Format("2006-01-02")
	}
	if filter.From != "" && filter.To != "" && filter.From > filter.To {
		return filter, fmt.Errorf("--from must be on or before --to")
	}
	return filter, nil
}

func loadLedger(filter storage.TicketFilter) ([]storage.Ticket, error) {
	db, err := storage.OpenTicketsDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return storage.ListTickets(db, filter)
}

func ledgerListCmd() *cobra.Command {
	var status, studio, from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := ledgerFilter(status, studio, from, to)
			if err != nil {
				return err
			}
			tickets, err := loadLedger(filter)
			if err != nil {
				return err
			}

			if outputJSON {
				return writeJSON(tickets)
			}
			if len(tickets) == 0 {
				fmt.Println("No tickets recorded.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
			if !outputCompact {
				fmt.Fprintln(writer, "CODE\tSTUDIO\tSEATS\tCUSTOMER\tSTATUS\tSOURCE\tBOOKED")
			}
			for _, t := range tickets {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					strings.ToUpper(t.Code), t.StudioName, t.Seats, t.UserName, t.Status, t.Source, t.BookedAt)
			}
			return writer.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only tickets with this status")
	cmd.Flags().StringVar(&studio, "studio", "", "Only tickets for this studio id")
	cmd.Flags().StringVar(&from, "from", "", "Booked on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Booked on or before (YYYY-MM-DD)")
	return cmd
}

func ledgerShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <code>",
		Short: "Show one recorded ticket, without contacting the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToLower(strings.TrimSpace(args[0]))
			db, err := storage.OpenTicketsDB()
			if err != nil {
				return err
			}
			defer db.Close()

			t, ok, err := storage.GetTicket(db, code)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("ticket %q not found", strings.ToUpper(code))
			}
			if outputJSON {
				return writeJSON(t)
			}

			fmt.Printf("Ticket %s | %s (studio %s) | seats %s\n", strings.ToUpper(t.Code), t.StudioName, t.StudioID, t.Seats)
			fmt.Printf("Type: %s | Status: %s | Source: %s\n", t.BookingType, t.Status, t.Source)
			if t.UserName != "" || t.UserEmail != "" {
				fmt.Printf("Customer: %s %s\n", t.UserName, t.UserEmail)
			}
			fmt.Printf("Booked at: %s\n", t.BookedAt)
			return nil
		},
	}

	return cmd
}

func ledgerRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <code>",
		Short: "Remove a ticket from the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToLower(strings.TrimSpace(args[0]))
			db, err := storage.OpenTicketsDB()
			if err != nil {
				return err
			}
			defer db.Close()

			removed, err := storage.RemoveTicket(db, code)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("ticket %q not found", strings.ToUpper(code))
			}

			fmt.Printf("Removed ticket %s.\n", strings.ToUpper(code))
			return nil
		},
	}

	return cmd
}

func ledgerStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			tickets, err := loadLedger(storage.TicketFilter{})
			if err != nil {
				return err
			}
			if len(tickets) == 0 {
				fmt.Println("No tickets recorded.")
				return nil
			}

			stats := computeLedgerStats(tickets)
			if outputJSON {
				return writeJSON(stats)
			}

			fmt.Printf("Tickets: %d (%d seats)\n", stats.TotalTickets, stats.TotalSeats)
			sources := make([]string, 0, len(stats.BySource))
			for source := range stats.BySource {
				sources = append(sources, source)
			}
			sort.Strings(sources)
			for _, source := range sources {
				fmt.Printf("  %s: %d\n", source, stats.BySource[source])
			}
			fmt.Printf("Busiest studio: %s (%d tickets)\n", stats.BusiestStudio, stats.BusiestStudioQty)
			fmt.Printf("Last booked: %s\n", stats.LastBooked)
			return nil
		},
	}

	return cmd
}

func ledgerExportCmd() *cobra.Command {
	var out string
	var status, studio, from, to string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--xlsx is required")
			}
			filter, err := ledgerFilter(status, studio, from, to)
			if err != nil {
				return err
			}
			tickets, err := loadLedger(filter)
			if err != nil {
				return err
			}
			if err := storage.ExportTickets(out, tickets); err != nil {
				return err
			}
			fmt.Printf("Exported %d tickets to %s.\n", len(tickets), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "xlsx", "", "Output workbook path")
	cmd.Flags().StringVar(&status, "status", "", "Only tickets with this status")
	cmd.Flags().StringVar(&studio, "studio", "", "Only tickets for this studio id")
	cmd.Flags().StringVar(&from, "from", "", "Booked on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Booked on or before (YYYY-MM-DD)")
	return cmd
}

func computeLedgerStats(tickets []storage.Ticket) LedgerStats {
	stats := LedgerStats{TotalTickets: len(tickets), BySource: map[string]int{}}

	studioCounts := map[string]int{}
	studioNames := map[string]string{}
	for _, t := range tickets {
		if t.Seats != "" {
			stats.TotalSeats += len(strings.Split(t.Seats, ","))
		}
		stats.BySource[t.Source]++
		studioCounts[t.StudioID]++
		if t.StudioName != "" {
			studioNames[t.StudioID] = t.StudioName
		}
		if t.BookedAt > stats.LastBooked {
			stats.LastBooked = t.BookedAt
		}
	}

	stats.BusiestStudio, stats.BusiestStudioQty = topStudio(studioCounts, studioNames)
	if stats.LastBooked == "" {
		stats.LastBooked = "N/A"
	}
	return stats
}

func topStudio(counts map[string]int, names map[string]string) (string, int) {
	top := ""
	max := 0
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if counts[key] > max {
			max = counts[key]
			top = key
		}
	}
	if max == 0 {
		return "N/A", 0
	}
	if name, ok := names[top]; ok {
		return name, max
	}
	return top, max
}
