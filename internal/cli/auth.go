package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage authentication with the content API.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the content API",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the content API",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE:  runWhoami,
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the account password",
	RunE:  runChangePassword,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)
	authCmd.AddCommand(changePasswordCmd)

	loginCmd.Flags().String("email", "", "Account email (prompted if omitted)")
}

func readPassword(prompt string) string {
	fmt.Print(prompt)
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return string(passwordBytes)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Email: ")
		email, _ = reader.ReadString('\n')
		email = strings.TrimSpace(email)
	}

	password := readPassword("Password: ")

	fmt.Println("Logging in...")
	if err := a.mgr.Login(context.Background(), email, password); err != nil {
		return err
	}

	user := a.store.User()
	fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	if !a.mgr.Authenticated() {
		fmt.Println("Not logged in.")
		return nil
	}

	a.mgr.Logout(context.Background())
	fmt.Println("Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	user, err := a.mgr.CurrentUser(context.Background())
	if err != nil {
		return fmt.Errorf("not logged in: %w", err)
	}

	fmt.Printf("%s <%s> role=%s\n", user.Name, user.Email, user.Role)
	fmt.Printf("Session expires in %s\n", a.store.TimeUntilExpiry().Round(time.Second))
	return nil
}

func runChangePassword(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	if !a.mgr.Authenticated() {
		return fmt.Errorf("not logged in")
	}

	oldPassword := readPassword("Current password: ")
	newPassword := readPassword("New password: ")
	confirm := readPassword("Confirm new password: ")

	if newPassword != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if err := a.mgr.ChangePassword(context.Background(), oldPassword, newPassword); err != nil {
		return err
	}

	fmt.Println("Password changed.")
	return nil
}
