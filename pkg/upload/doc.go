// Package upload validates and persists files received through HTTP multipart
// requests.
//
// Every uploaded file is wrapped in a File that runs its own pipeline: the
// transport error reported at ingestion is checked first, then the size,
// extension, type class and sniffed MIME type policies of its Config. All
// checks run and errors accumulate, so a client learns every reason a file
// was rejected at once. Valid files are saved under a composed filename
// (prefix, base name, suffix, optional "_n" counter and extension) either on
// the local filesystem or through a Mover such as S3Mover or FTPMover.
//
// # Architecture
//
//   - Descriptor: what the transport layer knows about a received file
//   - Config: validation and naming policy, loadable from the environment
//   - Hooks: callbacks at before_validation, after_validation, before_save and after_save
//   - File: one file's validation and save state
//   - Upload: a batch of files sharing a Config and a Hooks registry
//   - FromRequest / FromForm: turn a multipart request into descriptors
//
// # Usage
//
//	import "github.com/dmitrymomot/uploadkit/pkg/upload"
//
//	descs, err := upload.FromRequest(r, upload.WithMaxFileSize(32<<20))
//	if err != nil {
//		return err
//	}
//
//	cfg := upload.DefaultConfig()
//	cfg.Path = "/var/uploads"
//	cfg.ExtWhitelist = []string{"jpg", "png"}
//	cfg.Normalize = true
//
//	u := upload.New(cfg, upload.WithLogger(log))
//	defer func() { _ = u.Cleanup() }()
//	u.Add(descs...)
//	u.Validate(ctx)
//	u.Save(ctx)
//
//	for _, f := range u.Files() {
//		if f.Saved() {
//			log.Info("stored", "path", f.Destination())
//		}
//	}
//
// # Error Codes
//
// Codes 1 to 8 are transport errors carried over from the Descriptor. Codes
// 101 to 113 are produced by the pipeline; see the Code constants. Messages
// come from Config.MessageResolver when set, otherwise from a built-in
// English catalog.
//
// # Hooks
//
// A Hook returns the errors it wants added to the file. The file's validity
// is recomputed after each hook, so a before_save hook returning an error
// prevents the move:
//
//	_ = u.Register(upload.BeforeSave, func(ctx context.Context, f *upload.File) []upload.FileError {
//		f.SetPath(filepath.Join("/var/uploads", userID))
//		return nil
//	})
//
// # Concurrency
//
// Hooks is safe for concurrent use and is meant to be shared. File and Upload
// are not. Concurrent saves into one directory on one host are made safe by
// claiming the auto-renamed filename with an exclusive create; a Locker adds
// exclusion across hosts.
package upload
