package cli

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/recipeblog/recipeq/internal/config"
	"github.com/recipeblog/recipeq/internal/errors"
	"github.com/recipeblog/recipeq/internal/form"
	"github.com/spf13/cobra"
)

// addFieldFlags registers one flag per profile field. Repeated fields take
// the flag several times; values are never split on commas.
func addFieldFlags(cmd *cobra.Command, profile config.Profile) {
	for _, f := range profile.Fields {
		if f.Repeated {
			cmd.Flags().StringArray(f.Name, nil, f.Description+" (repeatable)")
		} else {
			cmd.Flags().String(f.Name, "", f.Description)
		}
	}
}

// fieldValues gathers the values submitted for profile: field flags first,
// then name=value arguments. Arguments may use the indexed names the blog's
// forms produce (ingredient[2]=basil); those are ordered by index.
func fieldValues(cmd *cobra.Command, profile config.Profile, args []string) (map[string][]string, error) {
	values := make(map[string][]string)

	for _, f := range profile.Fields {
		flag := cmd.Flags().Lookup(f.Name)
		if flag == nil || !flag.Changed {
			continue
		}
		if f.Repeated {
			vals, err := cmd.Flags().GetStringArray(f.Name)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrorTypeConfig, "failed to get %s flag", f.Name)
			}
			values[f.Name] = append(values[f.Name], vals...)
			continue
		}
		v, err := cmd.Flags().GetString(f.Name)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrorTypeConfig, "failed to get %s flag", f.Name)
		}
		values[f.Name] = append(values[f.Name], v)
	}

	submitted, names, err := parseAssignments(args)
	if err != nil {
		return nil, err
	}
	for _, c := range form.CollectAll(submitted, names...) {
		values[c.Name] = append(values[c.Name], c.Values...)
	}
	return values, nil
}

// parseAssignments reads name=value arguments into form values and returns
// the distinct field names in order of first appearance.
func parseAssignments(args []string) (url.Values, []string, error) {
	submitted := url.Values{}
	var names []string
	seen := make(map[string]bool)

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, nil, errors.New(errors.ErrorTypeValidation, "field arguments must be name=value").
				WithContext("argument", arg)
		}

		name := key
		if open := strings.IndexByte(key, '['); open > 0 && strings.HasSuffix(key, "]") {
			if n, err := strconv.Atoi(key[open+1 : len(key)-1]); err != nil || n < 0 {
				return nil, nil, errors.New(errors.ErrorTypeValidation, "row index must be a non-negative integer").
					WithContext("argument", arg)
			}
			name = key[:open]
		}

		submitted.Add(key, value)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return submitted, names, nil
}
