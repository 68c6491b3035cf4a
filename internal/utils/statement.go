package utils

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Dan9191/bankshot/internal/models"
	"github.com/beevik/etree"
)

// WriteStatement renders a snapshot and its derived view as an XML statement
func WriteStatement(w io.Writer, snap *models.FinancialSnapshot, view models.DerivedView, issued time.Time) error {
	if snap == nil {
		return fmt.Errorf("no snapshot to export")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Statement")
	root.CreateAttr("issued", issued.UTC().Format(time.RFC3339))
	root.CreateAttr("mode", string(snap.Mode))
	if snap.SourceCustomerID != "" {
		root.CreateAttr("customer", snap.SourceCustomerID)
	}

	summary := root.CreateElement("Summary")
	summary.CreateElement("CurrentBalance").SetText(strconv.FormatInt(view.CurrentBalance, 10))
	summary.CreateElement("BalanceDelta").SetText(strconv.FormatInt(view.BalanceDelta, 10))
	summary.CreateElement("Trend").SetText(string(view.TrendDirection))
	best := summary.CreateElement("BestMonth")
	best.CreateAttr("period", view.BestMonth.Period)
	best.SetText(strconv.FormatInt(view.BestMonth.Balance, 10))
	goal := summary.CreateElement("Goal")
	goal.CreateAttr("progress", strconv.FormatFloat(view.GoalProgressPercent, 'f', 1, 64))
	goal.SetText(strconv.FormatFloat(snap.Goal, 'f', 2, 64))
	summary.CreateElement("Advice").SetText(snap.AdvisoryText)

	history := root.CreateElement("BalanceHistory")
	for _, p := range snap.BalanceHistory {
		el := history.CreateElement("Period")
		el.CreateAttr("label", p.Period)
		el.SetText(strconv.FormatInt(p.Balance, 10))
	}

	spending := root.CreateElement("Spending")
	spending.CreateElement("Needs").SetText(strconv.FormatInt(snap.Spending.Needs, 10))
	spending.CreateElement("Wants").SetText(strconv.FormatInt(snap.Spending.Wants, 10))
	spending.CreateElement("Savings").SetText(strconv.FormatInt(snap.Spending.Savings, 10))

	if c := snap.Credit; c != nil {
		credit := root.CreateElement("Credit")
		credit.CreateAttr("utilization", strconv.Itoa(c.UtilizationPercent))
		credit.CreateElement("Limit").SetText(strconv.FormatInt(c.Limit, 10))
		credit.CreateElement("Used").SetText(strconv.FormatInt(c.Used, 10))
		credit.CreateElement("Available").SetText(strconv.FormatInt(c.Available, 10))
	}

	txs := root.CreateElement("Transactions")
	for _, tx := range snap.Transactions {
		el := txs.CreateElement("Transaction")
		el.CreateAttr("id", tx.ID)
		el.CreateAttr("type", string(tx.Kind))
		el.CreateAttr("date", tx.OccurredOn.Format("2006-01-02"))
		el.CreateElement("Merchant").SetText(tx.Merchant)
		el.CreateElement("Category").SetText(tx.Category)
		el.CreateElement("Amount").SetText(strconv.FormatFloat(tx.Amount, 'f', 2, 64))
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write statement: %w", err)
	}
	return nil
}
