// Package lms is a client for a training registry's directory, registry and
// content repository.
//
// # Usage
//
//	client, err := lms.NewClient(baseURL, creds, logger)
//	if err != nil {
//		return err
//	}
//	org, err := client.GetOrganization(ctx, "Acme Corp")
//	quals, err := client.LoadQualifications(ctx, org.NodeID, []string{"Forklift Cert"})
//
// Lookups of nodes, qualifications, requirements, attribute values and
// thumbnails are memoized for the lifetime of the Client. Entries are only
// added: an update does not touch what is already cached unless the client
// was built WithInvalidateOnWrite. ResetCache drops everything.
//
// # Error Handling
//
// Errors are the dispatch package's typed errors and are logged once where
// they occur. Lookups that find nothing return an error wrapping ErrNotFound.
// Operations that need a parent entity return a dispatch.PreconditionError
// wrapping ErrRegistryNotFound, ErrRepositoryNotFound and the like when it
// is missing.
package lms
