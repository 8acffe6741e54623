// Package fixgen is the client for the external text service that
// drafts replacement titles, meta descriptions, headings, and alt text
// for generable findings. The service is opaque and possibly slow or
// unreliable; the audit result always stands on its own when the
// service fails.
package fixgen
