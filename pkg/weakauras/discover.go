package weakauras

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// wowFlavors are the sub-installation directories a WoW root may carry.
var wowFlavors = []string{
	"_retail_",
	"_classic_",
	"_classic_era_",
	"_anniversary_",
	"_ptr_",
	"_beta_",
}

// SavedVariablesInfo describes one discovered WeakAuras.lua file.
type SavedVariablesInfo struct {
	// Path is the full path to the file.
	Path string
	// Account is the account directory name the file belongs to.
	Account string
	// Flavor is the installation flavor without its surrounding
	// underscores (e.g. "classic_era").
	Flavor string
}

// PrettyFlavor formats the flavor for display: "classic_era" becomes
// "Classic Era".
func (i SavedVariablesInfo) PrettyFlavor() string {
	return FormatFlavorName(i.Flavor)
}

func (i SavedVariablesInfo) String() string {
	return i.Account + " - " + i.PrettyFlavor() + " (" + i.Path + ")"
}

// FindSavedVariables scans a WoW installation root for WeakAuras
// SavedVariables files across every flavor and account:
// <root>/<flavor>/WTF/Account/<account>/SavedVariables/WeakAuras.lua.
func FindSavedVariables(fs afero.Fs, wowPath string) []SavedVariablesInfo {
	var results []SavedVariablesInfo

	for _, flavor := range wowFlavors {
		accountRoot := filepath.Join(wowPath, flavor, "WTF", "Account")
		accounts, err := afero.ReadDir(fs, accountRoot)
		if err != nil {
			continue
		}
		for _, account := range accounts {
			if !account.IsDir() {
				continue
			}
			svPath := filepath.Join(accountRoot, account.Name(), "SavedVariables", "WeakAuras.lua")
			if ok, _ := afero.Exists(fs, svPath); ok {
				results = append(results, SavedVariablesInfo{
					Path:    svPath,
					Account: account.Name(),
					Flavor:  strings.Trim(flavor, "_"),
				})
			}
		}
	}

	return results
}

// FormatFlavorName turns a flavor slug into a display name, capitalizing
// each underscore-separated word.
func FormatFlavorName(flavor string) string {
	words := strings.Split(flavor, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
