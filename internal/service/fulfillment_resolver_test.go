package service

import (
	"testing"

	"github.com/hausmarkt/internal/constants"
)

func TestResolveUpgradesTruthyMarkerOnly(t *testing.T) {
	resolution := ResolveUpgrades(map[string]string{
		constants.MetaKeyBanner:       "true",
		constants.MetaKeyPremium:      "TRUE",
		constants.MetaKeyPin:          "1",
		constants.MetaKeyConfidential: "yes",
	})
	if !resolution.Upgrades[constants.MetaKeyBanner] {
		t.Fatalf("banner should be true for literal marker")
	}
	if resolution.Upgrades[constants.MetaKeyPremium] {
		t.Fatalf("premium should be false for uppercase marker")
	}
	if resolution.Upgrades[constants.MetaKeyPin] {
		t.Fatalf("pin should be false for numeric marker")
	}
	if resolution.Upgrades[constants.MetaKeyConfidential] {
		t.Fatalf("confidential should be false for yes marker")
	}
}

func TestResolveUpgradesPlanDefaultsToBasic(t *testing.T) {
	resolution := ResolveUpgrades(nil)
	if resolution.FinalPlan != constants.PlanBasic {
		t.Fatalf("final plan want basic got %s", resolution.FinalPlan)
	}
	if resolution.PlanUpgraded {
		t.Fatalf("plan upgraded should be false by default")
	}
	if resolution.CommissionChange {
		t.Fatalf("commission change should be false by default")
	}
	for key, value := range resolution.Upgrades {
		if value {
			t.Fatalf("upgrade %s should default to false", key)
		}
	}
}

func TestNormalizePlanRecognizesProductNames(t *testing.T) {
	cases := map[string]string{
		"":                        constants.PlanBasic,
		"basic":                   constants.PlanBasic,
		"Listed Property Basic":   constants.PlanBasic,
		"plus":                    constants.PlanPlus,
		"Listed Property Plus":    constants.PlanPlus,
		"premium":                 constants.PlanPremium,
		"Listed Property Premium": constants.PlanPremium,
		"something else":          constants.PlanBasic,
	}
	for raw, want := range cases {
		if got := NormalizePlan(raw); got != want {
			t.Fatalf("normalize %q want %s got %s", raw, want, got)
		}
	}
}

func TestNextPlanCapsAtPremium(t *testing.T) {
	if got := NextPlan(constants.PlanBasic); got != constants.PlanPlus {
		t.Fatalf("next of basic want plus got %s", got)
	}
	if got := NextPlan(constants.PlanPlus); got != constants.PlanPremium {
		t.Fatalf("next of plus want premium got %s", got)
	}
	if got := NextPlan(constants.PlanPremium); got != constants.PlanPremium {
		t.Fatalf("next of premium want premium got %s", got)
	}
}

func TestResolveUpgradesPlanUpgradeFlagOverrides(t *testing.T) {
	resolution := ResolveUpgrades(map[string]string{
		constants.MetaKeyPlan:        "Listed Property Basic",
		constants.MetaKeyPlanUpgrade: "true",
	})
	if resolution.FinalPlan != constants.PlanPlus {
		t.Fatalf("final plan want plus got %s", resolution.FinalPlan)
	}
	if !resolution.PlanUpgraded {
		t.Fatalf("plan upgraded should be true")
	}
}

func TestResolveUpgradesCommissionIsolated(t *testing.T) {
	resolution := ResolveUpgrades(map[string]string{
		constants.MetaKeyCommissionChange: "true",
		constants.MetaKeyCommissionValue:  "3.5",
		constants.MetaKeyCommissionType:   "percent",
	})
	if !resolution.CommissionChange {
		t.Fatalf("commission change should be true")
	}
	if resolution.PendingCommission != "3.5" {
		t.Fatalf("pending commission want 3.5 got %s", resolution.PendingCommission)
	}
	if resolution.PendingCommissionType != constants.CommissionTypePercent {
		t.Fatalf("pending commission type want percent got %s", resolution.PendingCommissionType)
	}
	if resolution.PlanUpgraded || resolution.FinalPlan != constants.PlanBasic {
		t.Fatalf("commission change must not upgrade plan")
	}
	for key, value := range resolution.Upgrades {
		if value {
			t.Fatalf("commission change must not set upgrade %s", key)
		}
	}
}

func TestResolveUpgradesCommissionTypeDefaultsToPercent(t *testing.T) {
	resolution := ResolveUpgrades(map[string]string{
		constants.MetaKeyCommissionChange: "true",
		constants.MetaKeyCommissionValue:  "9900",
		constants.MetaKeyCommissionType:   "weird",
	})
	if resolution.PendingCommissionType != constants.CommissionTypePercent {
		t.Fatalf("unknown commission type should default to percent")
	}

	resolution = ResolveUpgrades(map[string]string{
		constants.MetaKeyCommissionChange: "true",
		constants.MetaKeyCommissionType:   "fixed",
	})
	if resolution.PendingCommissionType != constants.CommissionTypeFixed {
		t.Fatalf("fixed commission type should be preserved")
	}
}
