package main

import (
	"bufio"
	"cmp"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/atinyakov/GradeBook/internal/client/api"
	"github.com/atinyakov/GradeBook/internal/models"
)

var (
	version   string
	buildDate string
)

// repl runs the interactive shell loop, accepting commands to manage
// student records through the API.
func repl(client *api.Client) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("gradebook> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, register <user> <pass>, login <user> <pass>, logout,")
			fmt.Println("  add <surname> <name> <faculty> <course> <grade>, list, get <id>, delete <id>,")
			fmt.Println("  import <path> [encoding], courses, faculty <name>, avg <faculty>, exit")
		case "register":
			if len(args) < 3 {
				fmt.Println("Usage: register <user> <pass>")
				continue
			}
			id, err := client.Register(args[1], args[2])
			if err != nil {
				fmt.Println("register failed:", err)
				continue
			}
			fmt.Println("Registered with user id", id)
		case "login":
			if len(args) < 3 {
				fmt.Println("Usage: login <user> <pass>")
				continue
			}
			if err := client.Login(args[1], args[2]); err != nil {
				fmt.Println("login failed:", err)
				continue
			}
			fmt.Println("Logged in")
		case "logout":
			if err := client.Logout(); err != nil {
				fmt.Println("logout failed:", err)
				continue
			}
			fmt.Println("Logged out")
		case "add":
			if len(args) < 6 {
				fmt.Println("Usage: add <surname> <name> <faculty> <course> <grade>")
				continue
			}
			grade, err := strconv.Atoi(args[5])
			if err != nil {
				fmt.Println("grade must be an integer")
				continue
			}
			id, err := client.CreateStudent(models.Student{
				Surname: args[1], Name: args[2], Faculty: args[3], Course: args[4], Grade: grade,
			})
			if err != nil {
				fmt.Println("add failed:", err)
				continue
			}
			fmt.Println("Created student", id)
		case "list":
			students, err := client.ListStudents()
			if err != nil {
				fmt.Println("list failed:", err)
				continue
			}
			for _, s := range students {
				fmt.Printf("%d\t%s %s\t%s\t%s\t%d\n", s.ID, s.Surname, s.Name, s.Faculty, s.Course, s.Grade)
			}
		case "get":
			if len(args) < 2 {
				fmt.Println("Usage: get <id>")
				continue
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Println("id must be an integer")
				continue
			}
			s, err := client.GetStudent(id)
			if err != nil {
				fmt.Println("get failed:", err)
				continue
			}
			b, _ := json.MarshalIndent(s, "", "  ")
			fmt.Println(string(b))
		case "delete":
			if len(args) < 2 {
				fmt.Println("Usage: delete <id>")
				continue
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Println("id must be an integer")
				continue
			}
			if err := client.DeleteStudent(id); err != nil {
				fmt.Println("delete failed:", err)
				continue
			}
			fmt.Println("Student deleted")
		case "import":
			if len(args) < 2 {
				fmt.Println("Usage: import <path> [encoding]")
				continue
			}
			encoding := ""
			if len(args) > 2 {
				encoding = args[2]
			}
			inserted, err := client.ImportCSV(args[1], encoding)
			if err != nil {
				fmt.Println("import failed:", err)
				continue
			}
			fmt.Println("Inserted", inserted, "rows")
		case "courses":
			courses, err := client.Courses()
			if err != nil {
				fmt.Println("courses failed:", err)
				continue
			}
			for _, c := range courses {
				fmt.Println(c)
			}
		case "faculty":
			if len(args) < 2 {
				fmt.Println("Usage: faculty <name>")
				continue
			}
			pairs, err := client.FacultyStudents(strings.Join(args[1:], " "))
			if err != nil {
				fmt.Println("faculty failed:", err)
				continue
			}
			for _, p := range pairs {
				fmt.Printf("%s %s\n", p.Surname, p.Name)
			}
		case "avg":
			if len(args) < 2 {
				fmt.Println("Usage: avg <faculty>")
				continue
			}
			avg, err := client.AvgGrade(strings.Join(args[1:], " "))
			if err != nil {
				fmt.Println("avg failed:", err)
				continue
			}
			if avg == nil {
				fmt.Println("No records for that faculty")
			} else {
				fmt.Printf("Average grade: %.2f\n", *avg)
			}
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for the list of commands.")
		}
	}
}

func main() {
	baseURL := flag.String("server", "http://localhost:8080", "server base URL")
	flag.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	client := api.New(&http.Client{}, *baseURL)
	repl(client)
}
