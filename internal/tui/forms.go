package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/ledger"
	"github.com/theirongolddev/stipend/internal/model"
)

type formKind int

const (
	formNone formKind = iota
	formOnboarding
	formProfile
	formTransaction
	formPerson
	formReset
)

func (k formKind) title() string {
	switch k {
	case formOnboarding:
		return "Welcome to stipend"
	case formProfile:
		return "Edit profile"
	case formTransaction:
		return "New transaction"
	case formPerson:
		return "New person entry"
	case formReset:
		return "Reset"
	default:
		return ""
	}
}

// formValues is the storage huh fields write into. It lives on the heap so
// the bound pointers survive App being copied by value.
type formValues struct {
	Profile model.ProfileDraft
	Tx      model.TransactionDraft
	Person  model.PersonDraft
	Confirm bool
}

func defaultFormValues(p model.Profile) *formValues {
	v := &formValues{
		Tx:     model.TransactionDraft{Kind: model.KindSpend, Category: model.CategoryFood},
		Person: model.PersonDraft{Direction: model.DirectionGave},
	}
	if p.Name != "" {
		v.Profile = model.ProfileDraft{
			Name:          p.Name,
			MonthlyBudget: p.MonthlyBudget.String(),
			School:        p.School,
			PaymentID:     p.PaymentID,
		}
	}
	return v
}

// openForm replaces the current view with a form of the given kind.
// vals carries over earlier input when a submission is rejected.
func (a *App) openForm(kind formKind, vals *formValues) tea.Cmd {
	if vals == nil {
		vals = defaultFormValues(a.profile)
	}

	var f *huh.Form
	switch kind {
	case formOnboarding, formProfile:
		f = NewProfileForm(&vals.Profile)
	case formTransaction:
		f = newTransactionForm(&vals.Tx)
	case formPerson:
		f = newPersonForm(&vals.Person)
	case formReset:
		vals.Confirm = false
		f = NewResetForm(&vals.Confirm)
	default:
		return nil
	}
	if a.width > 0 {
		f = f.WithWidth(min(a.width, formMaxWidth)).WithHeight(a.height)
	}

	a.form = f
	a.formKind = kind
	a.formVals = vals
	return f.Init()
}

func (a *App) closeForm() {
	a.form = nil
	a.formKind = formNone
	a.formVals = nil
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind, vals := a.formKind, a.formVals
		a.closeForm()
		return a.submitForm(kind, vals)

	case huh.StateAborted:
		kind := a.formKind
		a.closeForm()
		if kind == formOnboarding && !a.onboarded {
			return a, tea.Quit
		}
		return a, a.flash("Cancelled", false)
	}

	return a, cmd
}

// submitForm applies a completed form to the ledger. A rejected submission
// reopens the same form with the user's input intact.
func (a App) submitForm(kind formKind, vals *formValues) (tea.Model, tea.Cmd) {
	text, err := applyForm(a.ledger, kind, vals)
	if err != nil {
		a.log.Debug("form rejected", "form", kind.title(), "err", err)
		flash := a.flash(err.Error(), true)
		return a, tea.Batch(flash, a.openForm(kind, vals))
	}

	a.recompute()
	cmds := []tea.Cmd{a.flash(text, false)}
	if !a.onboarded {
		a.activeTab = tabDashboard
		cmds = append(cmds, a.openForm(formOnboarding, nil))
	}
	return a, tea.Batch(cmds...)
}

// applyForm performs the ledger operation behind a completed form and
// returns the notice to show.
func applyForm(l *ledger.Ledger, kind formKind, v *formValues) (string, error) {
	switch kind {
	case formOnboarding, formProfile:
		p, err := l.SetProfile(v.Profile)
		if err != nil {
			return "", err
		}
		if kind == formOnboarding {
			return "Welcome, " + p.Name, nil
		}
		return "Profile saved", nil

	case formTransaction:
		tx, err := l.AddTransaction(v.Tx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Added %s of %s (%s)", tx.Kind, cli.FormatMoney(tx.Amount), tx.Category), nil

	case formPerson:
		pt, err := l.AddPersonTransaction(v.Person)
		if err != nil {
			return "", err
		}
		if pt.Direction == model.DirectionGave {
			return fmt.Sprintf("Gave %s to %s", cli.FormatMoney(pt.Amount), pt.PersonName), nil
		}
		return fmt.Sprintf("Received %s from %s", cli.FormatMoney(pt.Amount), pt.PersonName), nil

	case formReset:
		if !v.Confirm {
			return "Reset cancelled", nil
		}
		if err := l.ResetAll(); err != nil {
			return "", err
		}
		return "All data cleared", nil
	}
	return "", nil
}

// NewProfileForm builds the onboarding / profile edit form writing into d.
func NewProfileForm(d *model.ProfileDraft) *huh.Form {
	return newForm(huh.NewGroup(
		huh.NewInput().
			Title("Name").
			Value(&d.Name).
			Validate(required("name")),
		huh.NewInput().
			Title("Monthly budget").
			Placeholder("5000").
			Value(&d.MonthlyBudget).
			Validate(validAmount),
		huh.NewInput().
			Title("School").
			Value(&d.School).
			Validate(required("school")),
		huh.NewInput().
			Title("Payment id").
			Description("Optional. Used in pay links, e.g. you@bank").
			Value(&d.PaymentID),
	))
}

// NewResetForm asks for confirmation before all data is deleted.
func NewResetForm(confirm *bool) *huh.Form {
	return NewConfirmForm("Delete the profile and every entry?", "This cannot be undone.", "Reset", confirm)
}

// NewConfirmForm is a yes/no dialog whose negative answer is always "Keep".
func NewConfirmForm(title, description, affirmative string, confirm *bool) *huh.Form {
	return newForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative(affirmative).
			Negative("Keep").
			Value(confirm),
	))
}

func newTransactionForm(d *model.TransactionDraft) *huh.Form {
	categories := make([]huh.Option[model.Category], len(model.Categories))
	for i, c := range model.Categories {
		categories[i] = huh.NewOption(string(c), c)
	}

	return newForm(huh.NewGroup(
		huh.NewSelect[model.Kind]().
			Title("Type").
			Options(
				huh.NewOption("Spend", model.KindSpend),
				huh.NewOption("Credit", model.KindCredit),
			).
			Value(&d.Kind),
		huh.NewInput().
			Title("Amount").
			Value(&d.Amount).
			Validate(validAmount),
		huh.NewSelect[model.Category]().
			Title("Category").
			Options(categories...).
			Value(&d.Category),
		huh.NewInput().
			Title("Notes").
			Value(&d.Notes),
	))
}

func newPersonForm(d *model.PersonDraft) *huh.Form {
	return newForm(huh.NewGroup(
		huh.NewInput().
			Title("Person").
			Value(&d.PersonName).
			Validate(required("person name")),
		huh.NewSelect[model.Direction]().
			Title("Direction").
			Options(
				huh.NewOption("I gave", model.DirectionGave),
				huh.NewOption("I received", model.DirectionReceived),
			).
			Value(&d.Direction),
		huh.NewInput().
			Title("Amount").
			Value(&d.Amount).
			Validate(validAmount),
		huh.NewInput().
			Title("Notes").
			Value(&d.Notes),
	))
}

func newForm(groups ...*huh.Group) *huh.Form {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "cancel"))
	return huh.NewForm(groups...).WithKeyMap(km).WithShowHelp(true)
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validAmount(s string) error {
	d, err := model.ParseAmount(s)
	if err != nil {
		return errors.New("enter a number")
	}
	if d.IsZero() {
		return errors.New("must not be zero")
	}
	return nil
}
