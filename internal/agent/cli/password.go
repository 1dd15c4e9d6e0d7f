package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword читает пароль, когда он не передан флагом --password.
//
// Поведение:
//   - fromStdin=true: читает весь stdin и обрезает завершающий перевод строки;
//   - иначе: запрашивает пароль в терминале без эха.
//
// Если stdin не терминал и fromStdin=false, возвращается ошибка
// "stdin is not a terminal; use --password-stdin". Пустой пароль считается ошибкой.
func readPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		pw := bytes.TrimRight(b, "\r\n")
		if len(pw) == 0 {
			return "", errors.New("empty password on stdin")
		}
		return string(pw), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; use --password-stdin")
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	pwBytes, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(pwBytes) == 0 {
		return "", errors.New("empty password")
	}
	return string(pwBytes), nil
}

// passwordFrom возвращает пароль из флага или читает его через ReadPassword.
func passwordFrom(cmd *cobra.Command, flagValue string, fromStdin bool) (string, error) {
	if cmd.Flags().Changed("password") {
		return flagValue, nil
	}
	return ReadPassword(cmd, fromStdin)
}
