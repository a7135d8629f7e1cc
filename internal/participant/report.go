package participant

import (
	"github.com/shopspring/decimal"

	"inscripciones/internal/exchange"
)

// Amounts is one currency's view of the report figures.
type Amounts struct {
	TotalPotential        decimal.Decimal `json:"totalPotential"`
	AmountCollected       decimal.Decimal `json:"amountCollected"`
	AmountPending         decimal.Decimal `json:"amountPending"`
	SurplusTotal          decimal.Decimal `json:"surplusTotal"`
	DeficitFromExemptions decimal.Decimal `json:"deficitFromExemptions"`
}

// Report is the fleet-wide financial summary. USD figures are always present;
// Local is nil when no exchange rate could be resolved, so callers surface
// "unavailable" instead of meaningless zeros.
type Report struct {
	TotalParticipants int `json:"totalParticipants"`
	Exempt            int `json:"exempt"`
	PendingFull       int `json:"pendingFull"`
	PendingPartial    int `json:"pendingPartial"`
	Paid              int `json:"paid"`
	Overpaid          int `json:"overpaid"`

	USD   Amounts        `json:"usd"`
	Rate  *exchange.Rate `json:"rate,omitempty"`
	Local *Amounts       `json:"local,omitempty"`
}

// Summarize recomputes the aggregate report from the full participant set.
// Pure and stateless: no incremental accumulation across calls, so the report
// can never drift from the underlying records.
//
// Collected counts at most the fee per head; surplus is tracked separately.
// Legacy satisfied records with no recorded amount count as collected at
// exactly the fee.
func Summarize(participants []Participant, fee decimal.Decimal, rate *exchange.Rate) (Report, error) {
	report := Report{TotalParticipants: len(participants)}

	for _, p := range participants {
		c, err := p.Classify(fee)
		if err != nil {
			return Report{}, err
		}

		switch c.Status {
		case StatusExempt:
			report.Exempt++
			report.USD.DeficitFromExemptions = report.USD.DeficitFromExemptions.Add(fee)
			continue
		case StatusPendingFull:
			report.PendingFull++
		case StatusPendingPartial:
			report.PendingPartial++
		case StatusPaid:
			report.Paid++
		case StatusOverpaid:
			report.Overpaid++
		}

		report.USD.TotalPotential = report.USD.TotalPotential.Add(fee)
		report.USD.AmountPending = report.USD.AmountPending.Add(c.Owed)
		report.USD.SurplusTotal = report.USD.SurplusTotal.Add(c.Surplus)

		collected := decimal.Min(p.MontoPagado, fee)
		if c.LegacyPaid {
			collected = fee
		}
		report.USD.AmountCollected = report.USD.AmountCollected.Add(collected)
	}

	if rate != nil && rate.Value.IsPositive() {
		report.Rate = rate
		report.Local = &Amounts{
			TotalPotential:        report.USD.TotalPotential.Mul(rate.Value),
			AmountCollected:       report.USD.AmountCollected.Mul(rate.Value),
			AmountPending:         report.USD.AmountPending.Mul(rate.Value),
			SurplusTotal:          report.USD.SurplusTotal.Mul(rate.Value),
			DeficitFromExemptions: report.USD.DeficitFromExemptions.Mul(rate.Value),
		}
	}

	return report, nil
}
