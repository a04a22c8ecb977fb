package assistant

import (
	"fmt"
	"regexp"
	"strings"
)

const howTo = `(?i)(?:how do i|how to|how can i) `

// defaultPatterns is the query table, tried in order.
func defaultPatterns() []pattern {
	return []pattern{
		{
			re: regexp.MustCompile(howTo + `create (?:a |an )?(directory|folder|dir)(?:\s+(?:called |named )?(.+))?`),
			handle: func(_ *Assistant, m []string) string {
				name := arg(m, 2, "example_dir")
				return fmt.Sprintf("To create a directory, use the 'mkdir' command:\n\nmkdir %s\n\n"+
					"This will create a new directory called '%s' in the current location.", name, name)
			},
			description: "How do I create a directory?",
		},
		{
			re: regexp.MustCompile(howTo + `create (?:a |an )?(file)(?:\s+(?:called |named )?(.+))?`),
			handle: func(_ *Assistant, m []string) string {
				name := arg(m, 2, "example.txt")
				return fmt.Sprintf("To create a new empty file, use the 'touch' command:\n\ntouch %s\n\n"+
					"To create a file with content, use the 'write' command:\n\nwrite %s \"Your file content here\"", name, name)
			},
			description: "How do I create a file?",
		},
		{
			re: regexp.MustCompile(howTo + `(?:delete|remove) (?:a |an )?(file|directory|folder|dir)(?:\s+(?:called |named )?(.+))?`),
			handle: func(_ *Assistant, m []string) string {
				name := arg(m, 2, "example")
				return fmt.Sprintf("To remove a file or directory, use the 'rm' command:\n\nrm %s\n\n"+
					"This will permanently remove '%s' from the file system.", name, name)
			},
			description: "How do I delete a file or directory?",
		},
		{
			re: regexp.MustCompile(howTo + `(?:see|view|read|display) (?:a |an |the )?(file(?:'s)? contents?|contents? of (?:a |an )?file)(?:\s+(.+))?`),
			handle: func(_ *Assistant, m []string) string {
				name := arg(m, 2, "example.txt")
				return fmt.Sprintf("To view the contents of a file, use the 'cat' command:\n\ncat %s\n\n"+
					"This will display the entire contents of '%s' in the console.", name, name)
			},
			description: "How do I view a file's contents?",
		},
		{
			re: regexp.MustCompile(howTo + `(?:see|view|list) (?:the )?(?:directory|folder|dir) contents?(?:\s+(?:of|in)\s+(.+))?`),
			handle: func(_ *Assistant, m []string) string {
				dir := arg(m, 1, "")
				if dir == "" {
					return "To list directory contents, use the 'ls' command:\n\nls\n\n" +
						"This will show all files and directories in the current location."
				}
				return fmt.Sprintf("To list directory contents, use the 'ls' command:\n\nls %s\n\n"+
					"This will show all files and directories in '%s'.", dir, dir)
			},
			description: "How do I list directory contents?",
		},
		{
			re: regexp.MustCompile(howTo + `change (?:the )?(?:directory|folder|dir|location)(?:\s+to\s+(.+))?`),
			handle: func(_ *Assistant, m []string) string {
				return fmt.Sprintf("To change your current directory, use the 'cd' command:\n\ncd %s\n\n"+
					"You can use 'cd ..' to go up one level or 'cd /' to go to the root directory.", arg(m, 1, "example_dir"))
			},
			description: "How do I change directories?",
		},
		{
			re: regexp.MustCompile(howTo + `(compress|uncompress|encrypt|decrypt) (?:a |an )?(file)(?:\s+(.+))?`),
			handle: func(_ *Assistant, m []string) string {
				name := arg(m, 3, "example.txt")
				switch op := strings.ToLower(m[1]); op {
				case "encrypt":
					return fmt.Sprintf("To encrypt a file, use the 'encrypt' command with a key:\n\nencrypt %s your_secret_key", name)
				default:
					return fmt.Sprintf("To %s a file, use the '%s' command:\n\n%s %s", op, op, op, name)
				}
			},
			description: "How do I compress/encrypt a file?",
		},
		{
			re: regexp.MustCompile(`(?i)(?:show|find|what is) (?:me )?(?:the )?(?:largest|biggest) file(?:\s+in\s+(.+))?`),
			handle: func(a *Assistant, m []string) string {
				return a.largestFile(arg(m, 1, "."))
			},
			description: "Show me the biggest file in [directory]",
		},
		{
			re: regexp.MustCompile(`(?i)what(?:'s| is) in (?:the )?(?:directory |folder |dir )?(.+)`),
			handle: func(a *Assistant, m []string) string {
				return a.contents(arg(m, 1, "."))
			},
			description: "What's in [directory]?",
		},
		{
			re: regexp.MustCompile(`(?i)(?:explain|what does|what is) (?:the )?(?:command )?([a-zA-Z]+)(?: command| do)?`),
			handle: func(_ *Assistant, m []string) string {
				return explain(m[1])
			},
			description: "Explain [command]",
		},
	}
}

// arg returns submatch i with trailing punctuation removed, or def when
// the group did not match.
func arg(m []string, i int, def string) string {
	if i >= len(m) {
		return def
	}
	s := strings.TrimSpace(strings.TrimRight(m[i], "?.!"))
	if s == "" {
		return def
	}
	return s
}

var explanations = map[string]string{
	"mkdir":          "Creates a new directory (folder) in the file system.\nUsage: mkdir <directory_name>",
	"touch":          "Creates a new empty file.\nUsage: touch <file_name>",
	"cd":             "Changes the current directory (location) in the file system.\nUsage: cd <directory_path>",
	"ls":             "Lists the contents of a directory.\nUsage: ls [-l] [directory_path]",
	"cat":            "Displays the contents of a file.\nUsage: cat <file_path>",
	"write":          "Writes text content to a file.\nUsage: write <file_path> <content>",
	"rm":             "Removes (deletes) a file or directory from the file system.\nUsage: rm <path>",
	"pwd":            "Prints the current directory.\nUsage: pwd",
	"cp":             "Copies a file.\nUsage: cp <source> <destination>",
	"mv":             "Moves or renames a file.\nUsage: mv <source> <destination>",
	"help":           "Displays help information about available commands.\nUsage: help",
	"exit":           "Exits the shell.\nUsage: exit",
	"save":           "Saves the current state of the file system to disk.\nUsage: save [filename]",
	"load":           "Loads a file system from disk.\nUsage: load [filename]",
	"diskinfo":       "Displays information about disk usage.\nUsage: diskinfo",
	"createvolume":   "Creates a new virtual disk volume.\nUsage: createvolume <volume_name> <size_in_mb>",
	"mount":          "Mounts a virtual disk image at a specified mount point.\nUsage: mount <disk_image> <mount_point>",
	"unmount":        "Unmounts a previously mounted volume.\nUsage: unmount <mount_point>",
	"mounts":         "Lists all mounted volumes.\nUsage: mounts",
	"compress":       "Compresses a file to save space.\nUsage: compress <file_path> [algorithm]",
	"uncompress":     "Uncompresses a previously compressed file.\nUsage: uncompress <file_path>",
	"iscompressed":   "Checks if a file is compressed.\nUsage: iscompressed <file_path>",
	"encrypt":        "Encrypts a file for security.\nUsage: encrypt <file_path> <key> [algorithm]",
	"decrypt":        "Decrypts a previously encrypted file.\nUsage: decrypt <file_path>",
	"isencrypted":    "Checks if a file is encrypted.\nUsage: isencrypted <file_path>",
	"changekey":      "Changes the encryption key for an encrypted file.\nUsage: changekey <file_path> <new_key>",
	"saveversion":    "Saves the current version of a file.\nUsage: saveversion <file_path>",
	"restoreversion": "Restores a file to a previously saved version.\nUsage: restoreversion <file_path> <version_index>",
	"listversions":   "Lists all available versions of a file.\nUsage: listversions <file_path>",
	"find":           "Searches with combined filters.\nUsage: find [path] [--name p [--regex]] [--content p] [--glob p] [--size min:max] [--date after:before] [--type f|d] [--tag t]",
	"grep":           "Searches file contents.\nUsage: grep <pattern> [--regex] [path]",
	"addtag":         "Adds a tag to a file or directory.\nUsage: addtag <path> <tag>",
	"rmtag":          "Removes a tag from a file or directory.\nUsage: rmtag <path> <tag>",
	"tags":           "Lists the tags of a file, or every tag in use.\nUsage: tags [path]",
	"ask":            "Asks the assistant a question about the file system.\nUsage: ask <your question>",
	"assistant":      "Activates the assistant to answer a question.\nUsage: assistant <your question>",
}

func explain(command string) string {
	cmd := strings.ToLower(command)
	if text, ok := explanations[cmd]; ok {
		return "Command: " + cmd + "\n" + text
	}
	return fmt.Sprintf("I don't have information about the '%s' command. Try 'help' to see a list of available commands.", cmd)
}
