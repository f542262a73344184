// Package zipview reads, extracts and compares the contents of zip archives.
//
// An archive is read once into an in-memory listing ([Archive]) of its
// non-directory entries. Later operations reopen the file and verify that
// each entry still matches the listing before touching it, so a listing
// can be kept around while the user browses.
//
// # Reading
//
//	a, err := zipview.Read(ctx, "release.zip",
//	    zipview.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	for _, e := range a.Entries() {
//	    fmt.Println(e.Path, e.Size)
//	}
//
// Entries are sorted directory-first: the directory elements of two paths
// are compared before their filenames, so files at the root of an archive
// come before files in subdirectories.
//
// # Extracting
//
// Extraction writes each entry to a temporary sibling of its output path,
// verifies the CRC-32 of the decompressed content and renames the
// temporary file into place:
//
//	n, err := zipview.ExtractMany(ctx, a, a.Entries(), []int{0, 2}, "out", false)
//
// An existing file at an output path is replaced. Use [Conflicts] to find
// such paths beforehand.
//
// # Comparing
//
// [Compare] pairs the entries of an archive with those of a second archive
// by pathname and reports, for each pathname, which side it is missing
// from or which of the selected fields differ:
//
//	diffs, err := zipview.Compare(a, "other.zip", nil,
//	    zipview.NewFieldSet(zipview.FieldSize, zipview.FieldCRC))
//	if err != nil {
//	    return err
//	}
//	err = zipview.WriteReport(os.Stdout, diffs, zipview.ReportColumns)
//
// # Cancellation and progress
//
// Read and ExtractMany check their context between entries. On
// cancellation they stop early and return what they have without an error.
// Progress is delivered through [WithProgress].
package zipview
