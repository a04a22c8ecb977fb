package shell

func cmdAddTag(sh *Shell, args []string) error {
	if len(args) < 2 {
		return usage("addtag <path> <tag>")
	}
	if err := sh.fs.AddTag(args[0], args[1]); err != nil {
		return err
	}
	sh.Printf("Tag '%s' added to %s\n", args[1], args[0])
	return nil
}

func cmdRemoveTag(sh *Shell, args []string) error {
	if len(args) < 2 {
		return usage("rmtag <path> <tag>")
	}
	if err := sh.fs.RemoveTag(args[0], args[1]); err != nil {
		return err
	}
	sh.Printf("Tag '%s' removed from %s\n", args[1], args[0])
	return nil
}

func cmdTags(sh *Shell, args []string) error {
	if len(args) == 0 {
		tags := sh.fs.AllTags()
		if len(tags) == 0 {
			sh.Println("No tags found in the system")
			return nil
		}
		sh.Println("All tags in the system:")
		for _, tag := range tags {
			sh.Printf("  %s\n", tag)
		}
		return nil
	}

	if err := exists("tags", sh, args[0]); err != nil {
		return err
	}
	tags := sh.fs.FileTags(args[0])
	if len(tags) == 0 {
		sh.Printf("No tags found for %s\n", args[0])
		return nil
	}
	sh.Printf("Tags for %s:\n", args[0])
	for _, tag := range tags {
		sh.Printf("  %s\n", tag)
	}
	return nil
}
