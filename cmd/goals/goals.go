// Package goals implements the savings goal commands.
package goals

import (
	"encoding/json"
	"fmt"
	"os"

	"fjacquet/finance-advisor/cmd/root"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/common"
	goalsvc "fjacquet/finance-advisor/internal/goals"
	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Cmd represents the goals command
var Cmd = &cobra.Command{
	Use:   "goals",
	Short: "Plan and track savings goals",
	Long: `Create, inspect, update and prioritize savings goals. Goals are kept for
the lifetime of the process unless goals.backend is set to sqlite in the
configuration, which makes them persist across runs.`,
}

var (
	name        string
	description string
	target      string
	current     string
	deadline    string
	income      string
	amount      string
	note        string
	available   string
	goalsFile   string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a savings goal",
	RunE:  runCreate,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List savings goals",
	RunE:  runList,
}

var getCmd = &cobra.Command{
	Use:   "get <goal-id>",
	Short: "Show a goal with its progress and savings plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var updateCmd = &cobra.Command{
	Use:   "update <goal-id>",
	Short: "Change the fields of a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

var contributeCmd = &cobra.Command{
	Use:   "contribute <goal-id>",
	Short: "Add a contribution to a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runContribute,
}

var prioritizeCmd = &cobra.Command{
	Use:   "prioritize",
	Short: "Rank goals and split monthly savings across them",
	Long: `Rank goals by urgency and remaining gap and allocate --available monthly
savings across them. Goals are read from --goals-file (a JSON array) when
given, otherwise the stored goals are used.`,
	RunE: runPrioritize,
}

func init() {
	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringVar(&name, "name", "", "Goal name")
		c.Flags().StringVar(&description, "description", "", "Goal description")
		c.Flags().StringVar(&target, "target", "", "Target amount")
		c.Flags().StringVar(&current, "current", "", "Amount already saved")
		c.Flags().StringVar(&deadline, "deadline", "", "Deadline YYYY-MM-DD (default: twelve months from now)")
	}
	getCmd.Flags().StringVar(&income, "income", "", "Monthly income, adds the share of income the plan needs")
	contributeCmd.Flags().StringVar(&amount, "amount", "", "Contribution amount")
	contributeCmd.Flags().StringVar(&note, "note", "", "Contribution note")
	prioritizeCmd.Flags().StringVar(&available, "available", "", "Monthly savings available for goals")
	prioritizeCmd.Flags().StringVar(&goalsFile, "goals-file", "", "JSON file with the goals to plan")

	Cmd.AddCommand(createCmd, listCmd, getCmd, updateCmd, contributeCmd, prioritizeCmd)
}

func service() (*goalsvc.Service, error) {
	c, err := root.RequireContainer()
	if err != nil {
		return nil, err
	}
	return c.GetGoalService(), nil
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	value, err := common.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, apperror.NewValidationError(field, raw, "expected a decimal number")
	}
	return value, nil
}

func parseDeadline(raw string) (*models.Date, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, apperror.NewValidationError("deadline", raw, "expected an ISO date (YYYY-MM-DD)")
	}
	return &d, nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}
	if target == "" {
		return apperror.NewValidationError("target", "", "is required")
	}

	in := goalsvc.CreateInput{Name: name, Description: description}
	if in.TargetAmount, err = parseDecimal("target", target); err != nil {
		return err
	}
	if current != "" {
		if in.CurrentAmount, err = parseDecimal("current", current); err != nil {
			return err
		}
	}
	if in.Deadline, err = parseDeadline(deadline); err != nil {
		return err
	}

	goal, err := svc.Create(root.Context(cmd), in)
	if err != nil {
		return err
	}
	return root.WriteResult(cmd, goal)
}

func runList(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}
	list, err := svc.List(root.Context(cmd))
	if err != nil {
		return err
	}
	return root.WriteResult(cmd, map[string][]models.Goal{"goals": list})
}

func runGet(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}
	var monthlyIncome *decimal.Decimal
	if income != "" {
		value, err := parseDecimal("income", income)
		if err != nil {
			return err
		}
		monthlyIncome = &value
	}
	details, err := svc.Get(root.Context(cmd), args[0], monthlyIncome)
	if err != nil {
		return err
	}
	return root.WriteResult(cmd, details)
}

// runUpdate applies only the flags given on the command line.
func runUpdate(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}

	var in goalsvc.UpdateInput
	flags := cmd.Flags()
	if flags.Changed("name") {
		in.Name = &name
	}
	if flags.Changed("description") {
		in.Description = &description
	}
	for _, f := range []struct {
		flag string
		raw  string
		into **decimal.Decimal
	}{
		{"target", target, &in.TargetAmount},
		{"current", current, &in.CurrentAmount},
	} {
		if !flags.Changed(f.flag) {
			continue
		}
		value, err := parseDecimal(f.flag, f.raw)
		if err != nil {
			return err
		}
		*f.into = &value
	}
	if flags.Changed("deadline") {
		if in.Deadline, err = parseDeadline(deadline); err != nil {
			return err
		}
	}

	goal, err := svc.Update(root.Context(cmd), args[0], in)
	if err != nil {
		return err
	}
	return root.WriteResult(cmd, goal)
}

type contributionResult struct {
	Goal     models.Goal         `json:"goal" yaml:"goal"`
	Progress models.GoalProgress `json:"progress" yaml:"progress"`
}

func runContribute(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}
	value, err := parseDecimal("amount", amount)
	if err != nil {
		return err
	}
	goal, err := svc.Contribute(root.Context(cmd), args[0], value, note)
	if err != nil {
		return err
	}
	return root.WriteResult(cmd, contributionResult{Goal: goal, Progress: goalsvc.Progress(goal)})
}

func runPrioritize(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}
	monthly, err := parseDecimal("available", available)
	if err != nil {
		return err
	}

	var plan *models.AllocationPlan
	if goalsFile != "" {
		list, err := readGoals(goalsFile)
		if err != nil {
			return err
		}
		plan, err = svc.Prioritize(list, monthly)
		if err != nil {
			return err
		}
	} else {
		plan, err = svc.PrioritizeStored(root.Context(cmd), monthly)
		if err != nil {
			return err
		}
	}
	return root.WriteResult(cmd, plan)
}

func readGoals(path string) ([]models.Goal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read goals file: %w", err)
	}
	var list []models.Goal
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, apperror.NewValidationError("goals-file", path, fmt.Sprintf("invalid JSON: %v", err))
	}
	return list, nil
}
