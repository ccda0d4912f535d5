package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/meditracker/medctl/pkg/medctl/client"
)

// lazyConfigAnnotation marks commands whose config file is loaded on first use
// rather than before the command runs.
const lazyConfigAnnotation = "medctl/lazy-config"

func newMedicineCommands() []*cobra.Command {
	cmds := []*cobra.Command{
		newCreateCommand(),
		newListCommand(),
		newGetCommand(),
		newUpdateCommand(),
		newDeleteCommand(),
		newSearchCommand(),
	}
	for _, c := range cmds {
		c.Annotations = map[string]string{lazyConfigAnnotation: "true"}
	}
	return cmds
}

func newCreateCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a medicine from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			r := newReporter(rt)
			r.banner()
			r.printf("Creating medicine from %s...\n", file)

			doc, ok := r.loadDocument(file)
			if !ok {
				return nil
			}
			apiClient, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			resp, err := apiClient.Medicines().Create(cmd.Context(), doc)
			if err != nil {
				r.requestFailed(err)
				return nil
			}
			r.response(resp, &client.Medicine{})
			r.outcome(resp, outcome{
				success: http.StatusCreated,
				ok:      "Medicine created successfully!",
				failed:  "Failed to create medicine",
			})
			return nil
		},
	}
	addFileFlag(cmd.Flags(), &file)
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all medicines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			r := newReporter(rt)
			r.banner()
			r.println("Getting all medicines...")

			apiClient, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			resp, err := apiClient.Medicines().List(cmd.Context())
			if err != nil {
				r.requestFailed(err)
				return nil
			}
			r.response(resp, &[]client.Medicine{})
			if resp.StatusCode != http.StatusOK {
				r.println("Failed to get medicines")
				return nil
			}
			if n, ok := r.count(resp, "Failed to get medicines"); ok {
				r.printf("Found %d medicine(s)\n", n)
			}
			return nil
		},
	}
}

func newGetCommand() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get a medicine by ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			r := newReporter(rt)
			r.banner()
			if !r.requireID(cmd, id) {
				return nil
			}
			r.printf("Getting medicine with ID: %d...\n", id)

			apiClient, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			resp, err := apiClient.Medicines().Get(cmd.Context(), id)
			if err != nil {
				r.requestFailed(err)
				return nil
			}
			r.response(resp, &client.Medicine{})
			r.outcome(resp, outcome{
				success:  http.StatusOK,
				ok:       "Medicine found!",
				notFound: "Medicine not found",
				failed:   "Failed to get medicine",
			})
			return nil
		},
	}
	addIDFlag(cmd.Flags(), &id)
	return cmd
}

func newUpdateCommand() *cobra.Command {
	var (
		id   int64
		file string
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a medicine by ID from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			r := newReporter(rt)
			r.banner()
			if !r.requireID(cmd, id) {
				return nil
			}
			r.printf("Updating medicine %d from %s...\n", id, file)

			doc, ok := r.loadDocument(file)
			if !ok {
				return nil
			}
			apiClient, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			resp, err := apiClient.Medicines().Update(cmd.Context(), id, doc)
			if err != nil {
				r.requestFailed(err)
				return nil
			}
			r.response(resp, &client.Medicine{})
			r.outcome(resp, outcome{
				success:  http.StatusOK,
				ok:       "Medicine updated successfully!",
				notFound: "Medicine not found",
				failed:   "Failed to update medicine",
			})
			return nil
		},
	}
	addIDFlag(cmd.Flags(), &id)
	addFileFlag(cmd.Flags(), &file)
	return cmd
}

func newDeleteCommand() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a medicine by ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			r := newReporter(rt)
			r.banner()
			if !r.requireID(cmd, id) {
				return nil
			}
			r.printf("Deleting medicine with ID: %d...\n", id)

			apiClient, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			resp, err := apiClient.Medicines().Delete(cmd.Context(), id)
			if err != nil {
				r.requestFailed(err)
				return nil
			}
			r.response(resp, nil)
			r.outcome(resp, outcome{
				success:  http.StatusNoContent,
				ok:       "Medicine deleted successfully!",
				notFound: "Medicine not found",
				failed:   "Failed to delete medicine",
			})
			return nil
		},
	}
	addIDFlag(cmd.Flags(), &id)
	return cmd
}

func newSearchCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search medicines by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			r := newReporter(rt)
			r.banner()
			if name == "" {
				r.printf("Error: --name required for %s command\n", cmd.Name())
				return nil
			}
			r.printf("Searching medicines with name: '%s'...\n", name)

			apiClient, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			resp, err := apiClient.Medicines().Search(cmd.Context(), name)
			if err != nil {
				r.requestFailed(err)
				return nil
			}
			r.response(resp, &[]client.Medicine{})
			if resp.StatusCode != http.StatusOK {
				r.println("Failed to search medicines")
				return nil
			}
			if n, ok := r.count(resp, "Failed to search medicines"); ok {
				r.printf("Found %d medicine(s) matching '%s'\n", n, name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name to search for")
	return cmd
}
