// Package migrate upgrades a stored record collection to the current
// schema version before the repository sees it.
//
// The collection itself stays a bare JSON array. Its schema version lives
// under a sibling key (see store.Adapter.VersionKey); a missing version
// means 0, the layout the browser UI wrote before versioning existed.
//
// Migrations are an ordered table of Steps, each moving the data from one
// version to the next. Run applies the steps the stored version has not seen
// yet, backs up the untouched collection if any step changed it, persists
// the result and stamps the new version. Running it again is a no-op.
package migrate
