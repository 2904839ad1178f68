package manifest

import "fmt"

// Supported manifest drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Open returns the store for driver.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverJSON, "":
		return NewJSONStore(path), nil
	case DriverSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("manifest: unknown driver %q", driver)
	}
}
