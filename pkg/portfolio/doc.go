// Package portfolio provides the content gateway for a bilingual video-editing
// portfolio: six row collections (settings, long videos, shorts, clients,
// pricing packages, FAQ items) behind a single Service interface with pluggable
// repository and image storage backends.
//
// The public site renderer (package site) and the admin editing workflow
// (package admin) both consume Service and never talk to each other.
// Implementations of Repository (memory, Postgres) live under repo/, image
// BlobStore implementations (memory, filesystem, S3) under storage/, and a
// Service implementation that talks to a remote server lives under remote/.
//
// Ordering and Filtering
//
// Every collection except settings is ordered by order_index ascending. The
// order index is a display hint and is not unique; ties are broken by creation
// time and then identifier so listings are stable. Filtering is limited to the
// active flag, and it is always evaluated by the repository, never by callers.
package portfolio
