package devserver

import "github.com/virtualwest/unicorn-rush/pkg/protocol"

const gameBackground = "Four friends quit their jobs to chase one startup idea. " +
	"Three funding rounds stand between them and the exit of their dreams."

var roleDefinitions = map[string]protocol.RoleDefinition{
	"ceo": {
		ID:          "ceo",
		Name:        "CEO",
		Description: "Sets the vision and talks to investors.",
		Abilities:   []string{"pitch", "veto"},
	},
	"cto": {
		ID:          "cto",
		Name:        "CTO",
		Description: "Keeps the product alive under impossible deadlines.",
		Abilities:   []string{"ship", "refactor"},
	},
	"cmo": {
		ID:          "cmo",
		Name:        "CMO",
		Description: "Turns vaporware into headlines.",
		Abilities:   []string{"hype", "spin"},
	},
	"coo": {
		ID:          "coo",
		Name:        "COO",
		Description: "Makes payroll clear, somehow.",
		Abilities:   []string{"budget", "negotiate"},
	},
}

var eventDeck = []protocol.RoundEvent{
	{
		Title:       "The Seed Round",
		Description: "An angel investor offers funding, but wants 30% of the company.",
		DecisionOptions: map[string]string{
			"A": "Take the money and run faster",
			"B": "Counter-offer at 15%",
			"C": "Bootstrap and eat instant noodles",
		},
	},
	{
		Title:       "The Outage",
		Description: "Production goes down during your biggest demo of the year.",
		DecisionOptions: map[string]string{
			"A": "Roll back and apologize publicly",
			"B": "Blame the cloud provider",
			"C": "Demo from a laptop running localhost",
		},
	},
	{
		Title:       "The Acquisition Offer",
		Description: "A tech giant offers to buy you out before the product even ships.",
		DecisionOptions: map[string]string{
			"A": "Sell and sail away",
			"B": "Decline and double down",
			"C": "Leak the offer to drive up the valuation",
		},
	},
}

var privateDeck = []map[string]string{
	{
		"ceo": "The angel is an old rival of yours. They will fold at 18%.",
		"cto": "The prototype can't survive a due-diligence audit yet.",
		"cmo": "A journalist already has the term sheet. Get ahead of it.",
		"coo": "There are six weeks of runway left, not the twelve everyone believes.",
	},
	{
		"ceo": "The demo audience includes your lead investor's board.",
		"cto": "The outage is your unreviewed Friday deploy.",
		"cmo": "The press release scheduled for tonight cannot be stopped.",
		"coo": "The cloud bill is overdue; that may be related.",
	},
	{
		"ceo": "The acquirer plans to shut the product down after buying it.",
		"cto": "Their engineers privately love your architecture.",
		"cmo": "Your hype may have inflated the offer past honesty.",
		"coo": "The offer covers every debt the company quietly carries.",
	},
}

func roundEvent(round int) *protocol.RoundEvent {
	if round < 1 || round > len(eventDeck) {
		return nil
	}
	ev := eventDeck[round-1]
	return &ev
}

func privateMessages(round int) map[string]string {
	if round < 1 || round > len(privateDeck) {
		return nil
	}
	return privateDeck[round-1]
}
