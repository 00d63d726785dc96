/*
Package operation implements the template commands: save, get, delete and list.

	+-------------+      +-------------+      +--------------+
	|   Scanner   | ---> |  Resolver   | ---> |  Repository  |
	| (entries)   |      | (manifest)  |      | (copy + tx)  |
	+-------------+      +-------------+      +--------------+

🎯 Purpose:
- Validates user input (template names, sources, exclude patterns)
- Prepares props (bare exclude names, directory sources)
- Builds the template manifest and hands it to the repository

🔄 Save flow:
1. Validate name, sources and exclude patterns
2. Expand "node_modules" style excludes, turn plain directories into globs
3. Check sources exist (empty directories are tolerated with force)
4. Fail early when the template exists and force is off
5. Scan, resolve destinations under <storage>/<name>, save

🔄 Get flow:
1. Scan <storage>/<name>/**
2. Resolve destinations under the target directory
3. Copy, removing whatever was created if a copy fails

🔍 Example:

	svc, err := operation.New(operation.Options{Repository: repo})
	err = svc.Save(ctx, operation.SaveProps{
		TemplateName: "web",
		Source:       []string{"./project"},
		Options:      operation.SaveOptions{Recursive: true, Exclude: []string{"node_modules"}},
	})
*/
package operation
