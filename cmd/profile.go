package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/grass-estimator/internal/model"
	"github.com/sells-group/grass-estimator/internal/profile"
)

var (
	profileSession string
	profileName    string
	profilePhone   string
	profileEmail   string
	profileAddress string
	profileLookup  string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the stored contact profile",
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Validate and store the contact profile",
	Example: `  grass-estimator profile set --name "Jo Smith" --phone 0412345678 \
    --email jo@example.com --lookup "12 Example St"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "profile")
		if err != nil {
			return err
		}
		defer env.Close()

		address := profileAddress
		if profileLookup != "" {
			if env.Places == nil {
				return eris.New("address lookup requires places.key")
			}
			suggestions, err := env.Places.Suggest(ctx, profileLookup)
			if err != nil {
				return eris.Wrap(err, "address lookup")
			}
			if len(suggestions) == 0 {
				return eris.Errorf("no address matches %q", profileLookup)
			}
			address = suggestions[0].Description
		}

		p := model.ContactProfile{
			Name:    profileName,
			Phone:   profilePhone,
			Email:   profileEmail,
			Address: address,
		}

		store := profile.NewStore(env.Store, profileSession)
		fieldErrs, err := store.Persist(ctx, p)
		if err != nil {
			return err
		}
		if !fieldErrs.Valid() {
			out := cmd.ErrOrStderr()
			for _, f := range fieldErrs.Fields() {
				fmt.Fprintf(out, "%s: %s\n", f, fieldErrs[f])
			}
			return eris.Errorf("invalid profile: %s", strings.Join(fieldErrs.Fields(), ", "))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "profile saved for session %s\n", profileSession)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored contact profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "profile")
		if err != nil {
			return err
		}
		defer env.Close()

		p, err := profile.NewStore(env.Store, profileSession).Load(ctx)
		if err != nil {
			return err
		}
		if p == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "no profile stored")
			return nil
		}

		out, err := yaml.Marshal(p)
		if err != nil {
			return eris.Wrap(err, "encode profile")
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var profileSuggestCmd = &cobra.Command{
	Use:   "suggest <partial address>",
	Short: "List address suggestions for a partial address",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "profile")
		if err != nil {
			return err
		}
		defer env.Close()

		if env.Places == nil {
			return eris.New("address lookup requires places.key")
		}
		suggestions, err := env.Places.Suggest(ctx, strings.Join(args, " "))
		if err != nil {
			return eris.Wrap(err, "address lookup")
		}

		for _, s := range suggestions {
			fmt.Fprintln(cmd.OutOrStdout(), s.Description)
		}
		return nil
	},
}

func init() {
	profileCmd.PersistentFlags().StringVar(&profileSession, "session", "local", "session ID the profile is stored under")

	profileSetCmd.Flags().StringVar(&profileName, "name", "", "full name")
	profileSetCmd.Flags().StringVar(&profilePhone, "phone", "", "Australian mobile number (04XXXXXXXX or +614XXXXXXXX)")
	profileSetCmd.Flags().StringVar(&profileEmail, "email", "", "email address")
	profileSetCmd.Flags().StringVar(&profileAddress, "address", "", "street address")
	profileSetCmd.Flags().StringVar(&profileLookup, "lookup", "", "resolve the address with the first autocomplete suggestion")

	profileCmd.AddCommand(profileSetCmd, profileShowCmd, profileSuggestCmd)
	rootCmd.AddCommand(profileCmd)
}
