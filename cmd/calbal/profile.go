// ABOUTME: CLI commands for metabolic profile calculation and display.
// ABOUTME: Wraps the Mifflin-St Jeor calculation with profile persistence.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/calbal/internal/metabolic"
	"github.com/harperreed/calbal/internal/models"
)

var (
	profileWeight   float64
	profileHeight   float64
	profileAge      int
	profileGender   string
	profileActivity string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage metabolic profiles",
	Long: `Manage metabolic profiles (BMR/TDEE estimates).

Profiles are snapshots: recalculating supersedes the old profile but
keeps it for historical reference. The current profile supplies the
BMR estimate when no burned_bmr events are logged for a day.

COMMANDS:

  calc   Calculate and store a new profile
  show   Show the current profile`,
}

var profileCalcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate and store a metabolic profile",
	Long: `Calculate BMR via Mifflin-St Jeor and TDEE from the activity level,
then store the result as the current profile.

ACTIVITY LEVELS:

  sedentary (1.2), light (1.375), moderate (1.55),
  active (1.725), extra_active (1.9)

EXAMPLES:

  calbal profile calc --weight 75 --height 175 --age 30 --gender male
  calbal profile calc --weight 62 --height 168 --age 27 --gender female --activity active`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !models.IsValidActivityLevel(profileActivity) {
			return fmt.Errorf("unknown activity level: %s (use sedentary, light, moderate, active, or extra_active)", profileActivity)
		}

		p, err := eng.CalculateMetabolicProfile(currentUser(), metabolic.Biometrics{
			WeightKg:      profileWeight,
			HeightCm:      profileHeight,
			Age:           profileAge,
			Gender:        metabolic.Gender(profileGender),
			ActivityLevel: models.ActivityLevel(profileActivity),
		})
		if err != nil {
			return fmt.Errorf("failed to calculate profile: %w", err)
		}

		color.Green("✓ Profile saved")
		fmt.Printf("  %s BMR %.0f kcal, TDEE %.0f kcal\n",
			color.New(color.Faint).Sprint(p.ID.String()[:8]),
			p.BMRCalories, p.TDEECalories)
		color.New(color.Faint).Printf("  accuracy score %.2f\n", p.AccuracyScore)

		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current metabolic profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := repo.GetMetabolicProfile(currentUser())
		if err != nil {
			return fmt.Errorf("failed to get profile: %w", err)
		}
		if p == nil {
			fmt.Println("No profile. Create one with 'calbal profile calc'.")
			return nil
		}

		faint := color.New(color.Faint)
		fmt.Printf("Profile %s\n\n", faint.Sprint(p.ID.String()[:8]))
		fmt.Printf("  BMR       %8.0f kcal/day\n", p.BMRCalories)
		fmt.Printf("  TDEE      %8.0f kcal/day %s\n", p.TDEECalories, faint.Sprintf("(%s)", p.ActivityLevel))
		fmt.Printf("  Method    %s\n", p.Method)
		faint.Printf("  calculated %s, accuracy %.2f\n",
			p.CalculatedAt.Format("2006-01-02"), p.AccuracyScore)

		return nil
	},
}

func init() {
	profileCalcCmd.Flags().Float64Var(&profileWeight, "weight", 0, "body weight in kg")
	profileCalcCmd.Flags().Float64Var(&profileHeight, "height", 0, "height in cm")
	profileCalcCmd.Flags().IntVar(&profileAge, "age", 0, "age in years")
	profileCalcCmd.Flags().StringVar(&profileGender, "gender", "", "gender for the BMR formula (male or female)")
	profileCalcCmd.Flags().StringVar(&profileActivity, "activity", "sedentary", "activity level")

	profileCmd.AddCommand(profileCalcCmd)
	profileCmd.AddCommand(profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}
