// ABOUTME: Public quote request CLI command
// ABOUTME: Queues a submission for admin import and mirrors it to the remote when configured
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/harperreed/quotedesk/crm"
	"github.com/harperreed/quotedesk/models"
)

// SubmitCommand records a public quote request from flags.
func SubmitCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	var sub models.Submission
	fs.StringVar(&sub.FirstName, "firstName", "", "First name (required)")
	fs.StringVar(&sub.LastName, "lastName", "", "Last name (required)")
	fs.StringVar(&sub.Phone, "phone", "", "Phone number (required)")
	fs.StringVar(&sub.Email, "email", "", "Email address")
	fs.StringVar(&sub.Address, "address", "", "Full address")
	fs.StringVar(&sub.ServiceType, "serviceType", "", "Requested service")
	fs.StringVar(&sub.Urgency, "urgency", "", "Urgency (flexible, soon, urgent, emergency)")
	fs.StringVar(&sub.Description, "description", "", "Project description")
	fs.StringVar(&sub.Budget, "budget", "", "Budget range")
	fs.StringVar(&sub.PreferredDate, "preferredDate", "", "Preferred start date")
	fs.StringVar(&sub.ContactPreference, "contactPreference", "", "Preferred contact method")
	fs.StringVar(&sub.ContactTime, "contactTime", "", "Best time to reach them")
	fs.StringVar(&sub.HeardAbout, "heardAbout", "", "How they heard about us")
	fs.StringVar(&sub.AdditionalNotes, "additionalNotes", "", "Anything else")
	_ = fs.Parse(args)

	res, err := svc.SubmitQuote(ctx, sub)
	if err != nil {
		return fmt.Errorf("failed to submit quote request: %w", err)
	}

	fmt.Printf("✓ Quote request received from %s (ID: %s)\n", res.Record.FullName(), res.Record.ID)
	switch {
	case res.PushError != nil:
		fmt.Printf("  Remote copy failed: %v\n", res.PushError)
	case res.Push.Duplicate:
		fmt.Println("  Already on the remote sheet")
	case res.Push.Success:
		fmt.Println("  ✓ Sent to remote sheet")
	}
	fmt.Println("  Run 'quotedesk import pending' to add it to the lead list.")
	return nil
}
