// Package dashboard aggregates stored payment records into the collections
// summary served at /dashboard. Summarize is pure: same records in, same
// summary out, no stored state.
package dashboard

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"payment-alerts/backend/internal/notify"
	"payment-alerts/backend/internal/payment/domain"
)

const fallbackGroup = "General Outstanding"

const (
	maxBreakdownSlices   = 6
	maxOutstandingGroups = 3
	maxGroupAccounts     = 4
	maxKeyActions        = 3
)

// Summary is the full dashboard payload.
type Summary struct {
	GeneratedAt       string             `json:"generatedAt"`
	Totals            Totals             `json:"totals"`
	Counts            Counts             `json:"counts"`
	Breakdowns        []BreakdownSlice   `json:"breakdowns"`
	OutstandingGroups []OutstandingGroup `json:"outstandingGroups"`
	KeyActions        []KeyAction        `json:"keyActions"`
}

// Totals holds the headline money figures.
type Totals struct {
	TotalCollections decimal.Decimal `json:"totalCollections"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
	NetInflow        decimal.Decimal `json:"netInflow"`
	Currency         string          `json:"currency"`
	LargestDebt      *DebtSummary    `json:"largestDebt"`
}

// DebtSummary identifies the single largest outstanding account.
type DebtSummary struct {
	Customer     string          `json:"customer"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Organization string          `json:"organization"`
	Status       string          `json:"status"`
}

// Counts holds invoice tallies per bucket.
type Counts struct {
	TotalInvoices       int `json:"totalInvoices"`
	PaidInvoices        int `json:"paidInvoices"`
	OutstandingInvoices int `json:"outstandingInvoices"`
}

// BreakdownSlice is one labeled share of collections. Percentage is a
// fraction of total collections in [0,1]; zero when there are no collections.
type BreakdownSlice struct {
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

// OutstandingGroup clusters outstanding accounts under an organization,
// source, or currency heading.
type OutstandingGroup struct {
	Title    string          `json:"title"`
	Total    decimal.Decimal `json:"total"`
	Accounts []GroupAccount  `json:"accounts"`
}

// GroupAccount is one outstanding account inside a group.
type GroupAccount struct {
	PaymentID string          `json:"payment_id"`
	Name      string          `json:"name"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// KeyAction is a suggested collections follow-up.
type KeyAction struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Accounts    []ActionAccount `json:"accounts,omitempty"`
}

// ActionAccount references a customer inside a key action.
type ActionAccount struct {
	Customer string          `json:"customer"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// Summarize builds the dashboard summary from all stored records.
// defaultCurrency fills records logged without one.
func Summarize(records []domain.Payment, defaultCurrency string) Summary {
	normalized := make([]domain.Payment, len(records))
	for i, p := range records {
		p.Status = strings.ToLower(strings.TrimSpace(p.Status))
		if p.Status == "" {
			// Rows logged before statuses were tracked count as collected.
			p.Status = "processed"
		}
		if p.Currency == "" {
			p.Currency = defaultCurrency
		}
		if p.CustomerName == "" {
			p.CustomerName = domain.UnknownCustomer
		}
		normalized[i] = p
	}

	var paid, outstanding []domain.Payment
	for _, p := range normalized {
		switch domain.Classify(p.Status).Bucket {
		case domain.BucketPaid:
			paid = append(paid, p)
		case domain.BucketOutstanding:
			outstanding = append(outstanding, p)
		}
	}

	outstandingSorted := sortedByAmountDesc(outstanding)

	var risk []domain.Payment
	for _, p := range outstanding {
		if domain.Classify(p.Status).Risk {
			risk = append(risk, p)
		}
	}
	risk = sortedByAmountDesc(risk)

	var largestDebt *domain.Payment
	if len(outstandingSorted) > 0 {
		largestDebt = &outstandingSorted[0]
	}

	totalCollections := sumAmounts(paid)
	totalOutstanding := sumAmounts(outstanding)

	currency := defaultCurrency
	if len(normalized) > 0 && normalized[0].Currency != "" {
		currency = normalized[0].Currency
	}

	totals := Totals{
		TotalCollections: totalCollections,
		TotalOutstanding: totalOutstanding,
		NetInflow:        totalCollections.Sub(totalOutstanding),
		Currency:         currency,
	}
	if largestDebt != nil {
		totals.LargestDebt = &DebtSummary{
			Customer:     largestDebt.CustomerName,
			Amount:       largestDebt.Amount,
			Currency:     largestDebt.Currency,
			Organization: largestDebt.OrgName,
			Status:       domain.DisplayLabel(largestDebt.Status),
		}
	}

	return Summary{
		GeneratedAt: domain.NowISO(),
		Totals:      totals,
		Counts: Counts{
			TotalInvoices:       len(normalized),
			PaidInvoices:        len(paid),
			OutstandingInvoices: len(outstanding),
		},
		Breakdowns:        buildBreakdown(paid, totalCollections),
		OutstandingGroups: buildOutstandingGroups(outstanding),
		KeyActions:        buildKeyActions(outstandingSorted, risk, largestDebt),
	}
}

// buildBreakdown splits collections by source (falling back to organization,
// then currency) and keeps the top slices by amount.
func buildBreakdown(paid []domain.Payment, totalCollections decimal.Decimal) []BreakdownSlice {
	sums := map[string]decimal.Decimal{}
	for _, p := range paid {
		key := strings.TrimSpace(p.Source)
		if key == "" {
			key = strings.TrimSpace(p.OrgName)
		}
		if key == "" {
			key = strings.TrimSpace(p.Currency)
		}
		if key == "" {
			key = "Other"
		}
		sums[key] = sums[key].Add(p.Amount)
	}

	slices := make([]BreakdownSlice, 0, len(sums))
	for label, amount := range sums {
		pct := 0.0
		if totalCollections.IsPositive() {
			pct = amount.Div(totalCollections).InexactFloat64()
		}
		slices = append(slices, BreakdownSlice{Label: label, Amount: amount, Percentage: pct})
	}
	sort.Slice(slices, func(i, j int) bool {
		if !slices[i].Amount.Equal(slices[j].Amount) {
			return slices[i].Amount.GreaterThan(slices[j].Amount)
		}
		return slices[i].Label < slices[j].Label
	})
	if len(slices) > maxBreakdownSlices {
		slices = slices[:maxBreakdownSlices]
	}
	return slices
}

// deriveGroupName picks the heading for an outstanding account: organization,
// then source, then a currency bucket, then the generic fallback.
func deriveGroupName(p domain.Payment) string {
	if org := strings.TrimSpace(p.OrgName); org != "" {
		return org
	}
	if src := strings.TrimSpace(p.Source); src != "" {
		return src
	}
	if cur := strings.TrimSpace(p.Currency); cur != "" {
		return strings.ToUpper(cur) + " Outstanding"
	}
	return fallbackGroup
}

func buildOutstandingGroups(outstanding []domain.Payment) []OutstandingGroup {
	byTitle := map[string]*OutstandingGroup{}
	order := []string{}
	for _, p := range outstanding {
		title := deriveGroupName(p)
		g, ok := byTitle[title]
		if !ok {
			g = &OutstandingGroup{Title: title}
			byTitle[title] = g
			order = append(order, title)
		}
		g.Total = g.Total.Add(p.Amount)
		g.Accounts = append(g.Accounts, GroupAccount{
			PaymentID: p.PaymentID,
			Name:      p.CustomerName,
			Status:    domain.DisplayLabel(p.Status),
			Amount:    p.Amount,
			Currency:  p.Currency,
		})
	}

	groups := make([]OutstandingGroup, 0, len(order))
	for _, title := range order {
		g := *byTitle[title]
		sort.SliceStable(g.Accounts, func(i, j int) bool {
			return g.Accounts[i].Amount.GreaterThan(g.Accounts[j].Amount)
		})
		if len(g.Accounts) > maxGroupAccounts {
			g.Accounts = g.Accounts[:maxGroupAccounts]
		}
		groups = append(groups, g)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total.GreaterThan(groups[j].Total)
	})
	if len(groups) > maxOutstandingGroups {
		groups = groups[:maxOutstandingGroups]
	}
	return groups
}

func buildKeyActions(outstandingSorted, risk []domain.Payment, largestDebt *domain.Payment) []KeyAction {
	actions := []KeyAction{}

	if len(risk) > 0 {
		top := risk[0]
		accounts := []ActionAccount{}
		for _, p := range risk {
			accounts = append(accounts, ActionAccount{
				Customer: p.CustomerName, Amount: p.Amount, Currency: p.Currency,
			})
			if len(accounts) == 2 {
				break
			}
		}
		actions = append(actions, KeyAction{
			Title: "High-Risk Chase (No Response)",
			Description: "Immediately follow up with " + top.CustomerName + " for " +
				top.Currency + " " + notify.FormatAmount(top.Amount) +
				" (" + domain.DisplayLabel(top.Status) + ").",
			Accounts: accounts,
		})
	}

	if largestDebt != nil {
		actions = append(actions, KeyAction{
			Title: "Largest Debt Focus",
			Description: "Intensify follow-up efforts on " + largestDebt.CustomerName +
				" (" + largestDebt.Currency + " " + notify.FormatAmount(largestDebt.Amount) + ").",
		})
	}

	if oldest := oldestOutstanding(outstandingSorted); oldest != nil {
		when, _ := oldest.Time()
		actions = append(actions, KeyAction{
			Title: "Finalise Old Account",
			Description: "Ensure payment is secured for " + oldest.CustomerName +
				" (" + oldest.Currency + " " + notify.FormatAmount(oldest.Amount) +
				") logged on " + when.Format("2 Jan 2006") + ".",
		})
	}

	if len(actions) == 0 && len(outstandingSorted) > 0 {
		first := outstandingSorted[0]
		actions = append(actions, KeyAction{
			Title: "Follow Up",
			Description: "Reach out to " + first.CustomerName + " for " +
				first.Currency + " " + notify.FormatAmount(first.Amount) + ".",
		})
	}

	if len(actions) > maxKeyActions {
		actions = actions[:maxKeyActions]
	}
	return actions
}

// oldestOutstanding returns the outstanding record with the earliest
// parseable timestamp, or nil when none have one.
func oldestOutstanding(outstanding []domain.Payment) *domain.Payment {
	var oldest *domain.Payment
	var oldestAt int64
	for i := range outstanding {
		t, ok := outstanding[i].Time()
		if !ok {
			continue
		}
		if oldest == nil || t.Unix() < oldestAt {
			oldest = &outstanding[i]
			oldestAt = t.Unix()
		}
	}
	return oldest
}

func sortedByAmountDesc(records []domain.Payment) []domain.Payment {
	out := make([]domain.Payment, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

func sumAmounts(records []domain.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range records {
		total = total.Add(p.Amount)
	}
	return total
}
