package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meshcapade/meshcapade-go/client"
)

// specFlags binds the optional avatar metadata shared by the image commands.
type specFlags struct {
	name   string
	height int
	weight int
	gender string
}

func (s *specFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.name, "name", "", "Avatar name (optional)")
	cmd.Flags().IntVar(&s.height, "height", 0, "Height in cm (optional)")
	cmd.Flags().IntVar(&s.weight, "weight", 0, "Weight in kg (optional)")
	cmd.Flags().StringVar(&s.gender, "gender", "", "Body model: male or female (optional)")
}

func (s *specFlags) spec() client.AvatarSpec {
	return client.AvatarSpec{Name: s.name, Height: s.height, Weight: s.weight, Gender: client.Gender(s.gender)}
}

func newCreateFromImagesCmd(opts *rootOptions) *cobra.Command {
	var images []string
	var sf specFlags

	cmd := &cobra.Command{
		Use:   "create-from-images",
		Short: "Create an avatar from one or more photos",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Debug().Strs("images", images).Str("name", sf.name).Msg("creating avatar from images")

			c, err := opts.newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			start := time.Now()
			id, err := c.CreateFromImages(cmd.Context(), client.CreateFromImagesRequest{ImagePaths: images, AvatarSpec: sf.spec()})
			elapsed := time.Since(start)
			if err != nil {
				log.Error().Err(err).Int("images", len(images)).Dur("elapsed", elapsed).Msg("create from images failed")
				return err
			}
			log.Debug().Str("avatar_id", id).Dur("elapsed", elapsed).Msg("create from images completed")

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Avatar created: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&images, "image", nil, "Path to a photo (repeatable, required)")
	sf.bind(cmd)
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func newCreateFromMeasurementsCmd(opts *rootOptions) *cobra.Command {
	var name, gender string
	var raw map[string]string

	cmd := &cobra.Command{
		Use:   "create-from-measurements",
		Short: "Create an avatar from body measurements",
		Long: "Create an avatar from body measurements.\n\nAccepted names: " +
			strings.Join(client.MeasurementNames(), ", ") + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			measurements, err := parseMeasurements(raw)
			if err != nil {
				return err
			}
			log.Debug().Str("name", name).Str("gender", gender).Int("measurements", len(measurements)).Msg("creating avatar from measurements")

			c, err := opts.newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			start := time.Now()
			id, err := c.CreateFromMeasurements(cmd.Context(), client.CreateFromMeasurementsRequest{
				Name:         name,
				Gender:       client.Gender(gender),
				Measurements: measurements,
			})
			elapsed := time.Since(start)
			if err != nil {
				log.Error().Err(err).Str("name", name).Dur("elapsed", elapsed).Msg("create from measurements failed")
				return err
			}
			log.Debug().Str("avatar_id", id).Dur("elapsed", elapsed).Msg("create from measurements completed")

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Avatar created: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Avatar name (required)")
	cmd.Flags().StringVar(&gender, "gender", "", "Body model: male or female (required)")
	cmd.Flags().StringToStringVar(&raw, "measure", nil, "Measurement as Name=value, e.g. Height=175,Weight=70 (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("gender")
	_ = cmd.MarkFlagRequired("measure")
	return cmd
}

// parseMeasurements converts Name=value flag pairs. Names are checked by the
// client.
func parseMeasurements(raw map[string]string) (client.Measurements, error) {
	out := make(client.Measurements, len(raw))
	for k, v := range raw {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("measurement %s: %q is not a number", k, v)
		}
		out[strings.TrimSpace(k)] = f
	}
	return out, nil
}

func newCreatePredefinedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create-predefined",
		Short: "Create an avatar from the built-in measurement set",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			id, err := c.CreatePredefined(cmd.Context())
			if err != nil {
				log.Error().Err(err).Msg("create predefined failed")
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Avatar created: %s\n", id)
			return nil
		},
	}
}

func newCreateEmptyCmd(opts *rootOptions) *cobra.Command {
	var sf specFlags

	cmd := &cobra.Command{
		Use:   "create-empty",
		Short: "Register an avatar without images (then upload-image, fit-to-images)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			id, err := c.CreateEmptyAvatar(cmd.Context(), sf.spec())
			if err != nil {
				log.Error().Err(err).Str("name", sf.name).Msg("create empty avatar failed")
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Avatar created: %s\n", id)
			return nil
		},
	}
	sf.bind(cmd)
	return cmd
}

func newUploadImageCmd(opts *rootOptions) *cobra.Command {
	var avatarID string
	var images []string

	cmd := &cobra.Command{
		Use:   "upload-image",
		Short: "Attach photos to an avatar created with create-empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			for _, p := range images {
				up, err := c.UploadImage(cmd.Context(), avatarID, p)
				if err != nil {
					log.Error().Err(err).Str("avatar_id", avatarID).Str("image", p).Msg("upload image failed")
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s: %s\n", up.File, up.ImageID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&avatarID, "avatar-id", "", "Avatar ID (required)")
	cmd.Flags().StringArrayVar(&images, "image", nil, "Path to a photo (repeatable, required)")
	_ = cmd.MarkFlagRequired("avatar-id")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func newFitToImagesCmd(opts *rootOptions) *cobra.Command {
	var avatarID string
	var sf specFlags

	cmd := &cobra.Command{
		Use:   "fit-to-images",
		Short: "Start processing the uploaded photos of an avatar",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			if err := c.FitToImages(cmd.Context(), avatarID, sf.spec()); err != nil {
				log.Error().Err(err).Str("avatar_id", avatarID).Msg("fit to images failed")
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Fitting started: %s\n", avatarID)
			return nil
		},
	}

	cmd.Flags().StringVar(&avatarID, "avatar-id", "", "Avatar ID (required)")
	sf.bind(cmd)
	_ = cmd.MarkFlagRequired("avatar-id")
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	var avatarID string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show an avatar",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			a, err := c.GetAvatar(cmd.Context(), avatarID)
			if err != nil {
				log.Error().Err(err).Str("avatar_id", avatarID).Msg("get avatar failed")
				return err
			}
			printAvatar(cmd, a)
			return nil
		},
	}

	cmd.Flags().StringVar(&avatarID, "avatar-id", "", "Avatar ID (required)")
	_ = cmd.MarkFlagRequired("avatar-id")
	return cmd
}

func printAvatar(cmd *cobra.Command, a *client.Avatar) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "ID:\t%s\n", a.ID)
	_, _ = fmt.Fprintf(w, "Name:\t%s\n", a.Name)
	_, _ = fmt.Fprintf(w, "State:\t%s\n", a.State)
	if a.Gender != "" {
		_, _ = fmt.Fprintf(w, "Gender:\t%s\n", a.Gender)
	}
	if a.Height > 0 {
		_, _ = fmt.Fprintf(w, "Height:\t%d\n", a.Height)
	}
	if a.Weight > 0 {
		_, _ = fmt.Fprintf(w, "Weight:\t%d\n", a.Weight)
	}
	// Extra server attributes in stable order.
	extra := make([]string, 0, len(a.Attributes))
	for k := range a.Attributes {
		switch k {
		case "name", "state", "gender", "height", "weight":
			continue
		}
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		_, _ = fmt.Fprintf(w, "%s:\t%v\n", k, a.Attributes[k])
	}
	for _, as := range a.Assets {
		_, _ = fmt.Fprintf(w, "Asset:\t%s\n", as.URL)
	}
	_ = w.Flush()
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List avatars",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			start := time.Now()
			resp, err := c.ListAvatars(cmd.Context(), page, pageSize)
			if err != nil {
				log.Error().Err(err).Int("page", page).Int("page_size", pageSize).Msg("list avatars failed")
				return err
			}
			log.Debug().Int("count", len(resp.Avatars)).Dur("elapsed", time.Since(start)).Msg("list avatars completed")

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tSTATE")
			for _, a := range resp.Avatars {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, a.Name, a.State)
			}
			_ = w.Flush()

			p := resp.Pagination
			if p.TotalPages > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d avatars)\n", p.Page, p.TotalPages, p.Total)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Page %d (%d shown)\n", p.Page, len(resp.Avatars))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "Avatars per page")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var avatarID string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an avatar",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ack, err := c.DeleteAvatar(cmd.Context(), avatarID)
			if err != nil {
				log.Error().Err(err).Str("avatar_id", avatarID).Msg("delete avatar failed")
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Avatar deleted: %s\n", ack.AvatarID)
			return nil
		},
	}

	cmd.Flags().StringVar(&avatarID, "avatar-id", "", "Avatar ID (required)")
	_ = cmd.MarkFlagRequired("avatar-id")
	return cmd
}

func newDownloadCmd(opts *rootOptions) *cobra.Command {
	var avatarID, out string
	var interval time.Duration
	var maxAttempts int

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Wait for an avatar to finish processing and save its model",
		RunE: func(cmd *cobra.Command, args []string) error {
			dl := client.DownloadOptions{PollInterval: opts.cfg.PollInterval, MaxAttempts: opts.cfg.MaxAttempts}
			if cmd.Flags().Changed("poll-interval") {
				dl.PollInterval = interval
			}
			if cmd.Flags().Changed("max-attempts") {
				dl.MaxAttempts = maxAttempts
			}
			if out == "" {
				out = avatarID + ".obj"
			}

			c, err := opts.newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			log.Info().Str("avatar_id", avatarID).Dur("poll_interval", dl.PollInterval).Int("max_attempts", dl.MaxAttempts).Msg("waiting for avatar")
			start := time.Now()
			path, err := c.Download(cmd.Context(), avatarID, out, dl)
			elapsed := time.Since(start)
			if err != nil {
				log.Error().Err(err).Str("avatar_id", avatarID).Dur("elapsed", elapsed).Msg("download failed")
				return err
			}
			log.Debug().Str("avatar_id", avatarID).Str("path", path).Dur("elapsed", elapsed).Msg("download completed")

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Avatar saved: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&avatarID, "avatar-id", "", "Avatar ID (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination file (default <avatar-id>.obj)")
	cmd.Flags().DurationVar(&interval, "poll-interval", client.DefaultPollInterval, "Wait between status checks (env MESHCAPADE_POLL_INTERVAL)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", client.DefaultMaxAttempts, "Status checks before giving up (env MESHCAPADE_MAX_ATTEMPTS)")
	_ = cmd.MarkFlagRequired("avatar-id")
	return cmd
}
