package shopping

import (
	"fmt"
	"strings"
)

// Export formats. Markdown is suitable for chat surfaces, text for plain
// printouts.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// Export renders an optimized shopping list in the requested format. Unknown
// formats fall back to plain text.
func Export(list Optimized, format string) string {
	if format == FormatMarkdown {
		return exportMarkdown(list)
	}
	return exportText(list)
}

func exportMarkdown(list Optimized) string {
	var b strings.Builder
	b.WriteString("# Shopping List\n\n")
	fmt.Fprintf(&b, "**Total Cost:** $%.2f\n", list.TotalCost)
	fmt.Fprintf(&b, "**Total Savings:** $%.2f\n\n", list.TotalSavings)

	for _, plan := range list.Stores {
		fmt.Fprintf(&b, "## %s\n", plan.Store.Name)
		fmt.Fprintf(&b, "*%s (%.1f miles)*\n\n", plan.Store.Location.Address, plan.Distance)
		b.WriteString("| Item | Quantity | Price | Savings |\n")
		b.WriteString("|------|----------|-------|---------|\n")

		for _, item := range plan.Items {
			savings := "-"
			if item.Savings > 0 {
				savings = fmt.Sprintf("$%.2f", item.Savings)
			}
			fmt.Fprintf(&b, "| %s | %g %s | $%.2f | %s |\n",
				item.Name, item.Quantity, item.Unit, item.effectivePrice()*item.Quantity, savings)
		}
		fmt.Fprintf(&b, "\n**Subtotal:** $%.2f\n\n", plan.Subtotal)
	}

	if len(list.SuggestedSubstitutions) > 0 {
		b.WriteString("## Money-Saving Substitutions\n\n")
		for _, sub := range list.SuggestedSubstitutions {
			fmt.Fprintf(&b, "- **%s** -> %s (Save ~$%.2f)\n", sub.Original, sub.Substitute, sub.SavingsAmount)
			fmt.Fprintf(&b, "  *%s*\n\n", sub.Reason)
		}
	}
	return b.String()
}

func exportText(list Optimized) string {
	var b strings.Builder
	b.WriteString("SHOPPING LIST\n")
	b.WriteString("=============\n\n")
	fmt.Fprintf(&b, "Total: $%.2f", list.TotalCost)
	if list.TotalSavings > 0 {
		fmt.Fprintf(&b, " (Save $%.2f)", list.TotalSavings)
	}
	b.WriteString("\n\n")

	for _, plan := range list.Stores {
		b.WriteString(strings.ToUpper(plan.Store.Name) + "\n")
		b.WriteString(plan.Store.Location.Address + "\n")
		b.WriteString(strings.Repeat("-", 40) + "\n")

		for _, item := range plan.Items {
			fmt.Fprintf(&b, "[ ] %s - %g %s", item.Name, item.Quantity, item.Unit)
			if item.OnSale {
				b.WriteString(" (SALE!)")
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "\nSubtotal: $%.2f\n\n", plan.Subtotal)
	}
	return b.String()
}
