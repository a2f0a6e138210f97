package models

// European wheel: pockets 0-36.
const WheelPockets = 37

// Total-return multipliers (stake included in the payout).
const (
	MultiplierStraight  = 36
	MultiplierSecondary = 18 // straight hit on the bonus pocket
	MultiplierEvenMoney = 2
	MultiplierDozen     = 3
)

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true,
	12: true, 14: true, 16: true, 18: true, 19: true,
	21: true, 23: true, 25: true, 27: true, 30: true,
	32: true, 34: true, 36: true,
}

func IsRed(pocket int) bool {
	return redNumbers[pocket]
}

// BetMultiplier evaluates a bet against the winning pocket and the
// secondary bonus pocket. It returns the total-return multiplier, or 0
// for a losing bet. Zero is green: every outside bet loses on it.
// A straight bet on the secondary pocket pays half the straight rate;
// if a pocket is drawn as both primary and secondary the full straight
// rate applies.
func BetMultiplier(betType BetType, target, outcome, secondary int) int64 {
	if betType == BetStraight {
		if target == outcome {
			return MultiplierStraight
		}
		if target == secondary {
			return MultiplierSecondary
		}
		return 0
	}

	if outcome == 0 {
		return 0
	}

	switch betType {
	case BetRed:
		if IsRed(outcome) {
			return MultiplierEvenMoney
		}
	case BetBlack:
		if !IsRed(outcome) {
			return MultiplierEvenMoney
		}
	case BetEven:
		if outcome%2 == 0 {
			return MultiplierEvenMoney
		}
	case BetOdd:
		if outcome%2 == 1 {
			return MultiplierEvenMoney
		}
	case BetLow:
		if outcome <= 18 {
			return MultiplierEvenMoney
		}
	case BetHigh:
		if outcome >= 19 {
			return MultiplierEvenMoney
		}
	case BetDozen1:
		if outcome <= 12 {
			return MultiplierDozen
		}
	case BetDozen2:
		if outcome >= 13 && outcome <= 24 {
			return MultiplierDozen
		}
	case BetDozen3:
		if outcome >= 25 {
			return MultiplierDozen
		}
	case BetColumn1:
		if outcome%3 == 1 {
			return MultiplierDozen
		}
	case BetColumn2:
		if outcome%3 == 2 {
			return MultiplierDozen
		}
	case BetColumn3:
		if outcome%3 == 0 {
			return MultiplierDozen
		}
	}

	return 0
}
