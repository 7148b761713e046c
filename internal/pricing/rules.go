package pricing

import (
	"os"

	"github.com/diegoholiveira/jsonlogic/v3"
	"gopkg.in/yaml.v3"
)

// couponContext builds the variable set a coupon rule is evaluated against.
func couponContext(lines []CartLine, c *CustomerProfile, subtotal float64) map[string]any {
	itemCount := 0
	for _, l := range lines {
		if l.EffectiveQuantity() > 0 {
			itemCount++
		}
	}
	firstOrder := false
	if c != nil {
		firstOrder = c.FirstOrder()
	}
	return map[string]any{
		"subtotal":    subtotal,
		"item_count":  itemCount,
		"first_order": firstOrder,
	}
}

// Eligible evaluates a coupon's JSONLogic rule against the cart context.
// A coupon without a rule is always eligible; a rule that fails to evaluate
// or yields a non-true result makes the coupon ineligible.
func Eligible(coupon *Coupon, vars map[string]any) bool {
	if coupon == nil {
		return false
	}
	if len(coupon.Rule) == 0 {
		return true
	}
	result, err := jsonlogic.ApplyInterface(coupon.Rule, vars)
	if err != nil {
		return false
	}
	ok, isBool := result.(bool)
	return isBool && ok
}

// RulePack is a YAML-loadable set of coupon eligibility rules keyed by
// coupon code.
type RulePack struct {
	Rules map[string]map[string]any `yaml:"rules"`
}

// LoadRulePack reads a rule pack from disk.
func LoadRulePack(path string) (RulePack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RulePack{}, err
	}
	var pack RulePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return RulePack{}, err
	}
	return pack, nil
}

// RuleFor returns the rule for a coupon code, or nil when none is defined.
func (p RulePack) RuleFor(code string) map[string]any {
	if p.Rules == nil {
		return nil
	}
	return p.Rules[code]
}
