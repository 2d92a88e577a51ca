// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"solar-roi-workers/pkg/registry"
)

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	var registryPath string
	for _, fs := range []*flag.FlagSet{addCmd, updateCmd, validateCmd} {
		fs.StringVar(&registryPath, "path", "configs/activity-registry.json", "Path to registry file")
	}

	idAdd := addCmd.String("id", "", "Activity ID (e.g., roi-calculate)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., ROI Calculate)")
	description := addCmd.String("description", "", "Description")
	category := addCmd.String("category", "solar", "Category")
	taskType := addCmd.String("taskType", "", "Zeebe task type (e.g., solar.roi.calculate)")
	version := addCmd.String("version", "1.0.0", "Version")

	idUpdate := updateCmd.String("id", "", "Activity ID to update")
	field := updateCmd.String("field", "", "Field to update (version, timeout, retries, ...)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *taskType == "" {
			fmt.Println("Error: id, displayName and taskType are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		err = addActivity(registryPath, registry.Activity{
			ID:          *idAdd,
			DisplayName: *displayName,
			Description: *description,
			Category:    *category,
			Version:     *version,
			TaskType:    *taskType,
			Timeout:     "10s",
		})

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		err = updateActivity(registryPath, *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		err = validateRegistry(registryPath)

	default:
		help()
		return
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func addActivity(path string, activity registry.Activity) error {
	reg, err := registry.LoadRegistry(path)
	if os.IsNotExist(err) {
		reg, err = &registry.ActivityRegistry{Version: "1.0.0"}, nil
	}
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	reg.Activities = append(reg.Activities, activity)
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	if err := registry.SaveRegistry(reg, path); err != nil {
		return err
	}
	fmt.Printf("Added activity: %s\n", activity.ID)
	return nil
}

func updateActivity(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var activity *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == id {
			activity = &reg.Activities[i]
			break
		}
	}
	if activity == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "taskType":
		activity.TaskType = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	if err := registry.SaveRegistry(reg, path); err != nil {
		return err
	}
	fmt.Printf("Updated activity %s, field %s to %s\n", id, field, value)
	return nil
}

func validateRegistry(path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add       Add a new activity to the registry
  update    Update an existing activity's field
  validate  Validate the registry file and its schemas
  help      Show this help message

Examples:
  registry-updater add -id roi-calculate -displayName "ROI Calculate" -taskType solar.roi.calculate
  registry-updater update -id roi-calculate -field timeout -value 15s
  registry-updater validate -path configs/activity-registry.json`)
}
