package shell

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

func cmdSave(sh *Shell, args []string) error {
	image := sh.image
	if len(args) > 0 {
		image = args[0]
	}
	if err := sh.fs.SaveToDisk(image); err != nil {
		return err
	}
	sh.Printf("File system saved to %s\n", image)
	return nil
}

func cmdLoad(sh *Shell, args []string) error {
	image := sh.image
	if len(args) > 0 {
		image = args[0]
	}
	if err := sh.fs.LoadFromDisk(image); err != nil {
		return err
	}
	sh.Printf("File system loaded from %s\n", image)
	return nil
}

func cmdDiskInfo(sh *Shell, _ []string) error {
	total, used := sh.fs.TotalSpace(), sh.fs.UsedSpace()

	sh.Println("Disk Information:")
	if total == 0 {
		sh.Println("  Total Space: unlimited")
		sh.Printf("  Used Space: %s\n", humanize.IBytes(used))
		return nil
	}
	sh.Printf("  Total Space: %s\n", humanize.IBytes(total))
	sh.Printf("  Used Space: %s (%.2f%%)\n", humanize.IBytes(used), float64(used)/float64(total)*100)
	sh.Printf("  Free Space: %s\n", humanize.IBytes(sh.fs.FreeSpace()))
	return nil
}

func cmdCreateVolume(sh *Shell, args []string) error {
	if len(args) < 2 {
		return usage("createvolume <volume_name> <size_in_mb>")
	}
	mb, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil || mb == 0 {
		return fmt.Errorf("createvolume: invalid size %q: must be a positive integer", args[1])
	}
	size := mb << 20
	if err := sh.fs.CreateVolume(args[0], size); err != nil {
		return err
	}
	sh.Printf("Created volume %s with size %s\n", args[0], humanize.IBytes(size))
	return nil
}

func cmdMount(sh *Shell, args []string) error {
	if len(args) < 2 {
		return usage("mount <disk_image> <mount_point>")
	}
	if err := sh.fs.MountVolume(args[0], args[1]); err != nil {
		return err
	}
	sh.Printf("Mounted %s at %s\n", args[0], args[1])
	return nil
}

func cmdUnmount(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("unmount <mount_point>")
	}
	if err := sh.fs.UnmountVolume(args[0]); err != nil {
		return err
	}
	sh.Printf("Unmounted volume at %s\n", args[0])
	return nil
}

func cmdMounts(sh *Shell, _ []string) error {
	mounts := sh.fs.ListMountedVolumes()
	if len(mounts) == 0 {
		sh.Println("No mounted volumes")
		return nil
	}
	sh.Println("Mounted volumes:")
	for _, m := range mounts {
		sh.Printf("  %s -> %s\n", m.MountPoint, m.Image)
	}
	return nil
}
