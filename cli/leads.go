// ABOUTME: Lead CLI commands
// ABOUTME: Add, list, update, delete, status, contacted toggle, dedupe and clear
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/quotedesk/crm"
	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/normalize"
)

// leadFlags registers the admin form fields on fs.
func leadFlags(fs *flag.FlagSet) map[string]*string {
	fields := map[string]*string{}
	for _, f := range []struct{ name, usage string }{
		{"firstName", "First name"},
		{"lastName", "Last name"},
		{"phone", "Phone number"},
		{"email", "Email address"},
		{"address", "Street address (city, state and zip are parsed from it when omitted)"},
		{"city", "City"},
		{"state", "State"},
		{"zip", "Zip code"},
		{"serviceType", "Service type code or label"},
		{"priority", "Priority (low, medium, high, emergency or 1-5)"},
		{"status", "Status code or label"},
		{"notes", "Notes"},
		{"productDetails", "Product details"},
		{"budget", "Budget range"},
		{"preferredDate", "Preferred date"},
		{"meetingDate", "Meeting date"},
		{"referralSource", "How they heard about us"},
	} {
		fields[f.name] = fs.String(f.name, "", f.usage)
	}
	return fields
}

func setFields(fs *flag.FlagSet, fields map[string]*string) map[string]string {
	out := map[string]string{}
	fs.Visit(func(f *flag.Flag) {
		if v, ok := fields[f.Name]; ok {
			out[f.Name] = *v
		}
	})
	return out
}

// AddLeadCommand adds a lead from flags.
func AddLeadCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("lead add", flag.ExitOnError)
	fields := leadFlags(fs)
	_ = fs.Parse(args)

	rec, err := svc.AddForm(ctx, setFields(fs, fields))
	if err != nil {
		return fmt.Errorf("failed to add lead: %w", err)
	}

	fmt.Printf("✓ Lead added: %s (ID: %s)\n", rec.FullName(), rec.ID)
	printLeadSummary(rec)
	return nil
}

// ListLeadsCommand lists leads, highest priority first.
func ListLeadsCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("lead list", flag.ExitOnError)
	query := fs.String("query", "", "Search name, phone, email, notes and service")
	status := fs.String("status", "", "Filter by status")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	filter := crm.Filter{Query: *query}
	if *status != "" {
		filter.Status = normalize.Status(*status)
	}

	leads := svc.Filtered(ctx, filter)
	if len(leads) == 0 {
		fmt.Println("No leads found")
		return nil
	}
	if *limit > 0 && len(leads) > *limit {
		leads = leads[:*limit]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tPHONE\tSERVICE\tPRIORITY\tSTATUS\tCONTACTED\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t-------\t--------\t------\t---------\t--")
	for _, rec := range leads {
		contacted := "-"
		if rec.Contacted {
			contacted = "✓"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			orDash(rec.FullName()),
			orDash(rec.Phone),
			models.ServiceTypeLabel(rec.ServiceType),
			models.PriorityLabel(rec.Priority),
			models.StatusLabel(rec.Status),
			contacted,
			rec.ID,
		)
	}
	_ = w.Flush()

	fmt.Printf("\n%d lead(s)\n", len(leads))
	return nil
}

// UpdateLeadCommand overwrites the given fields of a lead. Flags must come
// before the lead ID.
func UpdateLeadCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("lead update", flag.ExitOnError)
	fields := leadFlags(fs)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: lead update [flags] <id>")
	}
	id := fs.Arg(0)

	current, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}

	next := applyFields(current, setFields(fs, fields))
	rec, err := svc.Update(ctx, id, next)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}

	fmt.Printf("✓ Lead updated: %s (ID: %s)\n", rec.FullName(), rec.ID)
	printLeadSummary(rec)
	return nil
}

// applyFields overlays changed form fields on rec.
func applyFields(rec models.CustomerRecord, changed map[string]string) models.CustomerRecord {
	for name, v := range changed {
		switch name {
		case "firstName":
			rec.FirstName = v
		case "lastName":
			rec.LastName = v
		case "phone":
			rec.Phone = normalize.Phone(v)
		case "email":
			rec.Email = v
		case "address":
			rec.Address = v
		case "city":
			rec.City = v
		case "state":
			rec.State = v
		case "zip":
			rec.Zip = v
		case "serviceType":
			rec.ServiceType = normalize.ServiceType(v)
		case "priority":
			rec.Priority = normalize.Priority(v)
		case "status":
			rec.Status = normalize.Status(v)
		case "notes":
			rec.Notes = v
		case "productDetails":
			rec.ProductDetails = v
		case "budget":
			rec.Budget = normalize.Budget(v)
		case "preferredDate":
			rec.PreferredDate = v
		case "meetingDate":
			rec.MeetingDate = v
		case "referralSource":
			rec.ReferralSource = normalize.Referral(v)
		}
	}
	return rec
}

// DeleteLeadCommand deletes a lead locally.
func DeleteLeadCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("lead delete", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: lead delete <id>")
	}

	if err := svc.Delete(ctx, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Printf("✓ Lead deleted: %s\n", fs.Arg(0))
	if svc.HasRemote() {
		fmt.Println("  The remote spreadsheet row is not removed.")
	}
	return nil
}

// StatusLeadCommand sets a lead's status.
func StatusLeadCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("lead status", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: lead status <id> <status>")
	}

	rec, err := svc.SetStatus(ctx, fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s is now %s\n", orDash(rec.FullName()), models.StatusLabel(rec.Status))
	return nil
}

// ContactedLeadCommand toggles the contacted flag.
func ContactedLeadCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("lead contacted", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: lead contacted <id>")
	}

	rec, err := svc.ToggleContacted(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if rec.Contacted {
		fmt.Printf("✓ Marked %s as contacted\n", orDash(rec.FullName()))
	} else {
		fmt.Printf("✓ Cleared contacted flag for %s\n", orDash(rec.FullName()))
	}
	return nil
}

// DedupeLeadsCommand removes duplicate leads by phone.
func DedupeLeadsCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("lead dedupe", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "Confirm removing duplicates")
	_ = fs.Parse(args)

	if !*confirm {
		fmt.Println("This merges leads that share a phone number and cannot be undone.")
		fmt.Println("Run with --confirm to proceed.")
		return nil
	}

	res, err := svc.Dedupe(ctx)
	if err != nil {
		return err
	}
	if res.Removed == 0 {
		fmt.Println("✓ No duplicates found")
		return nil
	}
	fmt.Printf("✓ Removed %d duplicate(s) across %d phone number(s)\n", res.Removed, res.Groups)
	return nil
}

// ClearLeadsCommand removes every local lead.
func ClearLeadsCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("lead clear", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "Confirm deleting all leads")
	_ = fs.Parse(args)

	if !*confirm {
		fmt.Println("This deletes every local lead. Run with --confirm to proceed.")
		return nil
	}
	if err := svc.ClearAll(ctx); err != nil {
		return err
	}
	fmt.Println("✓ All leads cleared")
	return nil
}

// StatsCommand prints dashboard counters.
func StatsCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	_ = fs.Parse(args)

	st, err := svc.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Leads")
	fmt.Println("─────")
	fmt.Printf("Total:      %d\n", st.Total)
	fmt.Printf("Active:     %d\n", st.Active)
	fmt.Printf("Completed:  %d\n", st.Completed)
	fmt.Printf("Follow-up:  %d\n", st.FollowUp)
	fmt.Printf("Contacted:  %d\n", st.Contacted)
	fmt.Printf("Pending:    %d\n", st.Pending)
	return nil
}

func printLeadSummary(rec models.CustomerRecord) {
	if rec.Phone != "" {
		fmt.Printf("  Phone: %s\n", rec.Phone)
	}
	if rec.Email != "" {
		fmt.Printf("  Email: %s\n", rec.Email)
	}
	if rec.ServiceType != "" {
		fmt.Printf("  Service: %s\n", models.ServiceTypeLabel(rec.ServiceType))
	}
	fmt.Printf("  Priority: %s\n", models.PriorityLabel(rec.Priority))
	fmt.Printf("  Status: %s\n", models.StatusLabel(rec.Status))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
