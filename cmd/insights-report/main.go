// Command insights-report prints predictive insights for one or all organizations as JSON.
package main

func main() {
	Execute()
}
