package classify

import "fmt"

// IndicatorRule is configuration data: a boolean signal evaluated against a
// contract's attributes. Any fired rule with TriggersMaterialOutsourcing
// forces the outsourcing classification regardless of other signals.
type IndicatorRule struct {
	Key                         string `json:"key"`
	Description                 string `json:"description,omitempty"`
	TriggersMaterialOutsourcing bool   `json:"triggers_material_outsourcing"`

	// CloudIndicator marks rules whose firing (absent material outsourcing)
	// classifies the contract as cloud computing.
	CloudIndicator bool `json:"cloud_indicator"`

	// SAMATrigger marks rules that, combined with an outsourcing
	// classification, require a SAMA no-objection certificate.
	SAMATrigger bool `json:"sama_trigger"`
}

// PredicateFunc evaluates whether a rule fires for the given attributes.
// The rule set is configuration data, so predicates are supplied by the
// caller rather than hard-coded into the engine.
type PredicateFunc func(rule IndicatorRule, attrs ContractAttributes) (bool, error)

// DefaultPredicate evaluates the built-in rule keys.
func DefaultPredicate(rule IndicatorRule, attrs ContractAttributes) (bool, error) {
	switch rule.Key {
	case "cloud_hosted":
		return attrs.CloudHosted, nil
	case "data_offshore":
		return attrs.DataLocation == "offshore", nil
	case "vendor_onsite":
		return attrs.OnsitePresence, nil
	case "long_duration":
		return attrs.DurationMonths >= 12, nil
	case "core_function":
		return attrs.CoreFunction, nil
	default:
		return false, &ConfigurationError{Problems: []string{fmt.Sprintf("no predicate for rule %q", rule.Key)}}
	}
}

// DefaultIndicatorRules returns the built-in rule set.
func DefaultIndicatorRules() []IndicatorRule {
	return []IndicatorRule{
		{Key: "cloud_hosted", Description: "service hosted on vendor cloud", CloudIndicator: true},
		{Key: "data_offshore", Description: "customer data stored outside the kingdom", TriggersMaterialOutsourcing: true, SAMATrigger: true},
		{Key: "vendor_onsite", Description: "vendor staff embedded on premises", TriggersMaterialOutsourcing: true},
		{Key: "long_duration", Description: "engagement of a year or longer"},
		{Key: "core_function", Description: "supports a core regulated function", TriggersMaterialOutsourcing: true, SAMATrigger: true},
	}
}
