// Package core provides the business operations behind the HTTP API: CSV
// template download, all-or-nothing budget import, export, trash management
// and license-expiry notices.
//
// It has no transport dependencies; handlers, jobs and tests drive it through
// [Service].
//
// # Import
//
//  1. The owner id is checked and an import slot is taken from [ImportLimiter]
//  2. [ReadImport] bounds the upload, strips the BOM and fixes the encoding
//  3. The CSV is parsed by package budgetcsv; any row error aborts the import
//  4. All budgets are stored in one transaction tagged with a new import id
//
// Nothing is written when any step fails.
//
// # Errors
//
// Technical errors are mapped to coded user messages by [MapError]. Import file
// errors keep their own text because it names the line and column at fault.
//
// # Trash
//
// Trashed budgets stay restorable for the retention period. The purge job
// started by [Service.StartTrashPurgeScheduler] removes them afterwards.
package core
