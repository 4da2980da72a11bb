package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"taeu.kr/fitedge/internal/account"
	"taeu.kr/fitedge/internal/auth"
)

func newSignupCmd(opts *globalOptions) *cobra.Command {
	req := &account.SignupRequest{}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account; a confirmation code is sent by SMS",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, opts)
			if err != nil {
				return err
			}

			resp, err := r.service.Signup(cmd.Context(), req)
			if err == nil {
				r.sess.Email = resp.Email
				fmt.Fprintf(r.out, "Account %s created for %s. Run `edgectl confirm --otp <code>` with the SMS code.\n", resp.ID, resp.Email)
			}
			return r.finish(err)
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.BirthDate, "birth-date", "", "birth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "mobile phone number")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	cmd.Flags().StringVar(&req.CPF, "cpf", "", "CPF document number")
	for _, name := range []string{"name", "email", "phone", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newSigninCmd(opts *globalOptions) *cobra.Command {
	req := &account.SigninRequest{}

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and store the session cookies",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, opts)
			if err != nil {
				return err
			}

			resp, err := r.service.Signin(cmd.Context(), req)
			if err == nil {
				r.sess.Email = resp.Email
				fmt.Fprintf(r.out, "Signed in as %s (%s), status: %s\n", resp.Name, resp.Email, resp.Status)
			}
			return r.finish(err)
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newConfirmCmd(opts *globalOptions) *cobra.Command {
	req := &account.ConfirmRequest{}

	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm the phone number with the SMS code",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, opts)
			if err != nil {
				return err
			}

			resp, err := r.service.ConfirmUser(cmd.Context(), req)
			if err == nil {
				fmt.Fprintf(r.out, "Phone %s confirmed.\n", resp.Phone)
			}
			return r.finish(err)
		},
	}

	cmd.Flags().StringVar(&req.OTP, "otp", "", "confirmation code")
	_ = cmd.MarkFlagRequired("otp")
	return cmd
}

func newResendOTPCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resend-otp",
		Short: "Send a new confirmation code",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, opts)
			if err != nil {
				return err
			}

			err = r.service.ResendOTP(cmd.Context())
			if err == nil {
				fmt.Fprintln(r.out, "A new confirmation code was sent.")
			}
			return r.finish(err)
		},
	}
}

func newUpdatePhoneCmd(opts *globalOptions) *cobra.Command {
	req := &account.UpdatePhoneRequest{}

	cmd := &cobra.Command{
		Use:   "update-phone",
		Short: "Change the phone number that receives the confirmation code",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, opts)
			if err != nil {
				return err
			}

			resp, err := r.service.UpdatePhone(cmd.Context(), req)
			if err == nil {
				fmt.Fprintf(r.out, "Phone updated to %s. A new code was sent.\n", resp.Phone)
			}
			return r.finish(err)
		},
	}

	cmd.Flags().StringVar(&req.Phone, "phone", "", "new mobile phone number")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func newSessionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, opts)
			if err != nil {
				return err
			}
			out := r.out

			if !r.sess.IsSignedIn() {
				fmt.Fprintf(out, "Not signed in (%s).\n", r.sess.BaseURL)
				return nil
			}

			fmt.Fprintf(out, "Backend: %s\n", r.sess.BaseURL)
			if r.sess.Email != "" {
				fmt.Fprintf(out, "Email:   %s\n", r.sess.Email)
			}
			for _, cookie := range r.sess.Cookies {
				expiry := "session"
				if !cookie.Expires.IsZero() {
					expiry = cookie.Expires.Local().Format(time.RFC3339)
				}
				fmt.Fprintf(out, "Cookie:  %s (expires %s)\n", cookie.Name, expiry)
			}

			if access, ok := r.sess.Cookie(auth.AccessCookieName); ok {
				if claims, ok := auth.DecodeDisplayClaims(access.Value); ok {
					if claims.Phone != "" {
						fmt.Fprintf(out, "Phone:   %s\n", claims.Phone)
					}
					if claims.ExpiresAt != nil {
						fmt.Fprintf(out, "Access token valid until %s\n", claims.ExpiresAt.Local().Format(time.RFC3339))
					}
				}
			}
			return nil
		},
	}
}

func newLogoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, opts)
			if err != nil {
				return err
			}

			if !r.sess.IsSignedIn() {
				fmt.Fprintln(r.out, "Not currently signed in.")
				return nil
			}

			r.sess.Clear()
			if err := r.sess.Save(opts.sessionPath); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			fmt.Fprintln(r.out, "Logged out successfully.")
			return nil
		},
	}
}
