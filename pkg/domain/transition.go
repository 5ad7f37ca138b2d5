package domain

// Trigger names what caused a transition: a selection action, free text or the reset command.
type Trigger string

const (
	TriggerAny   Trigger = "*"
	TriggerReset Trigger = "reset"
	TriggerText  Trigger = "text"
)

// Transition is one row of the conversation state table.
type Transition struct {
	From State   `json:"from" yaml:"from"`
	On   Trigger `json:"on" yaml:"on"`
	To   State   `json:"to" yaml:"to"`
}

// Transitions is the complete state table of the storefront conversation.
// The engine refuses to persist a next state that is not listed here.
var Transitions = []Transition{
	{From: StateInitial, On: TriggerAny, To: StateBrowsingMenu},
	{From: StateBrowsingMenu, On: Trigger(KindOpenCart), To: StateViewingCart},
	{From: StateBrowsingMenu, On: Trigger(KindOpenProduct), To: StateViewingProduct},
	{From: StateViewingProduct, On: Trigger(KindGoBack), To: StateBrowsingMenu},
	{From: StateViewingProduct, On: Trigger(KindAddToCart), To: StateViewingProduct},
	{From: StateViewingCart, On: Trigger(KindGoBack), To: StateBrowsingMenu},
	{From: StateViewingCart, On: Trigger(KindPay), To: StateAwaitingEmail},
	{From: StateViewingCart, On: Trigger(KindDeleteCartItem), To: StateViewingCart},
	{From: StateAwaitingEmail, On: TriggerText, To: StateInitial},
}

// Allowed reports whether the table contains the transition.
func Allowed(from State, on Trigger, to State) bool {
	for _, t := range Transitions {
		if t.From != from || t.To != to {
			continue
		}
		if t.On == TriggerAny || t.On == on {
			return true
		}
	}
	return false
}
