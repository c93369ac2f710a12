package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// deploymentRoot is the fixed installation path probed after the relative
// candidates.
const deploymentRoot = "/srv/gatehouse"

// NotFoundError reports a failed spec-file discovery along with every path
// that was probed, so operators can see exactly where the file was expected.
type NotFoundError struct {
	Name string
	// Tried lists the candidate paths in probe order.
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("config file %q not found, tried: %s", e.Name, strings.Join(e.Tried, ", "))
}

// Locate resolves a config file name against a fixed priority order:
// as given (cwd-relative), one directory up, two directories up, the
// deployment root, and the cwd parent joined with the name. The first
// candidate that is a regular file wins.
func Locate(name string) (string, error) {
	candidates := []string{
		name,
		filepath.Join("..", name),
		filepath.Join("..", "..", name),
		filepath.Join(deploymentRoot, name),
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(cwd), name))
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}

	return "", &NotFoundError{Name: name, Tried: candidates}
}
